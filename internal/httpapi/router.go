package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/andreasstove999/resource-panel/internal/clients"
	"github.com/andreasstove999/resource-panel/internal/middleware"
	"github.com/andreasstove999/resource-panel/internal/panel"
	"github.com/andreasstove999/resource-panel/internal/session"
	"github.com/andreasstove999/resource-panel/internal/views"
)

type Deps struct {
	Logger       *log.Logger
	Panel        *panel.Panel
	Sessions     session.Store
	SessionTTL   time.Duration
	CookieSecure bool
	HealthChecks []clients.HealthTarget
}

func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CorrelationID)
	r.Use(chimw.RequestLogger(&chimw.DefaultLogFormatter{Logger: d.Logger, NoColor: true}))
	r.Use(middleware.Recover(d.Logger))

	r.Get("/health", h.Health)
	r.Get("/health/upstreams", h.Upstreams)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(views.Static()))))

	r.Get(panel.RouteLogin, h.LoginPage)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)

	r.Route(panel.RouteDashboard, func(r chi.Router) {
		r.Use(middleware.RequireSession(d.Sessions, d.Logger))
		r.Get("/", h.Dashboard)
		r.Get("/resources", h.LoadResources)
		r.Post("/resources", h.AddResource)
		r.Put("/resources/quantity", h.UpdateQuantity)
		r.Put("/resources/{name}/quantity", h.UpdateQuantity)
	})

	return r
}
