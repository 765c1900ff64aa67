package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/andreasstove999/resource-panel/internal/clients"
	"github.com/andreasstove999/resource-panel/internal/config"
	"github.com/andreasstove999/resource-panel/internal/db"
	"github.com/andreasstove999/resource-panel/internal/events"
	"github.com/andreasstove999/resource-panel/internal/httpapi"
	"github.com/andreasstove999/resource-panel/internal/panel"
	"github.com/andreasstove999/resource-panel/internal/session"
)

func main() {
	logger := log.New(os.Stdout, "[resource-panel] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- resource API ---
	api, err := clients.NewClient("resource-api", cfg.APIBaseURL, &http.Client{Timeout: cfg.UpstreamTimeout})
	if err != nil {
		logger.Fatalf("resource api client: %v", err)
	}

	// --- sessions ---
	var (
		sessions session.Store
		pruner   *session.PostgresStore
	)
	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatalf("db connect: %v", err)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				logger.Fatalf("db migrate: %v", err)
			}
		}
		pruner = session.NewPostgresStore(pool)
		sessions = pruner
	} else {
		logger.Printf("PANEL_DATABASE_DSN not set, sessions are kept in memory")
		sessions = session.NewMemoryStore()
	}

	// --- AMQP ---
	var notifier panel.Notifier
	if cfg.AMQPURL != "" {
		conn, err := events.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Fatalf("amqp dial: %v", err)
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn, events.PublisherOptions{})
		if err != nil {
			logger.Fatalf("amqp publisher: %v", err)
		}
		defer pub.Close()
		notifier = pub
	}

	// --- HTTP ---
	router := httpapi.NewRouter(httpapi.Deps{
		Logger:       logger,
		Panel:        panel.New(clients.NewResourceClient(api), notifier, logger),
		Sessions:     sessions,
		SessionTTL:   cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
		HealthChecks: []clients.HealthTarget{{Name: api.Name, Client: api, Path: "/api/resources"}},
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("http listening on %s (resource api %s)", cfg.HTTPAddr, cfg.APIBaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if pruner != nil && cfg.PruneInterval > 0 {
		g.Go(func() error {
			pruneSessions(gctx, pruner, cfg.PruneInterval, logger)
			return nil
		})
	}

	// --- graceful shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		logger.Printf("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Printf("fatal error: %v", err)
	}
	logger.Printf("shutdown complete")
}

func pruneSessions(ctx context.Context, store *session.PostgresStore, every time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PruneExpired(ctx)
			if err != nil {
				logger.Printf("prune sessions: %v", err)
				continue
			}
			if n > 0 {
				logger.Printf("pruned %d expired sessions", n)
			}
		}
	}
}
