// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultRolePolicy grants the guarded actions. Anything not listed here is
// denied, including to owners.
const DefaultRolePolicy = "pin=owner,admin,investigator;" +
	"verify=owner,admin,investigator;" +
	"delete_evidence=owner,admin;" +
	"delete_document=owner,admin;" +
	"manage_members=owner,admin"

type Config struct {
	// General
	Port        string `envconfig:"API_PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	NodeID      int64  `envconfig:"NODE_ID" default:"1"`
	TimeZone    string `envconfig:"TIMEZONE" default:"UTC"`

	// Auth
	JWTSecret   string `envconfig:"JWT_SECRET" default:"your-secret-key"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
	RolePolicy  string `envconfig:"ROLE_POLICY"`

	// Journal (optional, disabled when DATABASE_URL is empty)
	DatabaseURL      string        `envconfig:"DATABASE_URL"`
	MigrationsPath   string        `envconfig:"MIGRATIONS_PATH" default:"./internal/db/migrations"`
	JournalBuffer    int           `envconfig:"JOURNAL_BUFFER" default:"1024"`
	JournalRetention time.Duration `envconfig:"JOURNAL_RETENTION" default:"720h"`
	JournalPrune     string        `envconfig:"JOURNAL_PRUNE" default:"0 3 * * *"`

	// Presence
	RedisURL        string        `envconfig:"REDIS_URL"`
	PresenceTimeout time.Duration `envconfig:"PRESENCE_TIMEOUT" default:"2m"`
	PresenceSweep   string        `envconfig:"PRESENCE_SWEEP" default:"@every 30s"`
	PresenceTTL     time.Duration `envconfig:"PRESENCE_TTL" default:"5m"`

	// Development fixtures
	SeedFile string `envconfig:"SEED_FILE"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Environment == "production" && c.JWTSecret == "your-secret-key" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.PresenceTimeout <= 0 {
		return fmt.Errorf("PRESENCE_TIMEOUT must be positive, got %s", c.PresenceTimeout)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// JournalEnabled reports whether events are persisted to Postgres.
func (c *Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}

// PresenceMirrorEnabled reports whether presence is mirrored to Redis.
func (c *Config) PresenceMirrorEnabled() bool {
	return c.RedisURL != ""
}

// Location resolves TIMEZONE for calendar-day grouping.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Policy returns the configured role policy, or the default one.
func (c *Config) Policy() string {
	if strings.TrimSpace(c.RolePolicy) == "" {
		return DefaultRolePolicy
	}
	return c.RolePolicy
}

// AllowedOrigins splits CORS_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
