package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `env:"PANEL_HTTP_ADDR" envDefault:":8080"`

	// Resource API base URL. The API's own default port is 5000.
	APIBaseURL string `env:"PANEL_API_URL" envDefault:"http://localhost:5000"`
	// Zero means requests to the resource API never time out.
	UpstreamTimeout time.Duration `env:"PANEL_UPSTREAM_TIMEOUT" envDefault:"0s"`

	SessionTTL   time.Duration `env:"PANEL_SESSION_TTL" envDefault:"12h"`
	CookieSecure bool          `env:"PANEL_COOKIE_SECURE" envDefault:"false"`

	// Empty DatabaseDSN keeps sessions in memory.
	DatabaseDSN   string        `env:"PANEL_DATABASE_DSN"`
	RunMigrations bool          `env:"PANEL_RUN_MIGRATIONS" envDefault:"true"`
	PruneInterval time.Duration `env:"PANEL_SESSION_PRUNE_INTERVAL" envDefault:"10m"`

	// Empty AMQPURL disables activity events.
	AMQPURL string `env:"PANEL_AMQP_URL"`
}

// Load reads an optional .env file and then the environment.
func Load(dotenvFiles ...string) (Config, error) {
	if err := loadDotenv(dotenvFiles...); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("PANEL_API_URL is required")
	}
	if c.UpstreamTimeout < 0 {
		return errors.New("PANEL_UPSTREAM_TIMEOUT must not be negative")
	}
	if c.SessionTTL <= 0 {
		return errors.New("PANEL_SESSION_TTL must be positive")
	}
	return nil
}

// loadDotenv never overrides variables already set in the environment.
// Missing files are ignored.
func loadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
