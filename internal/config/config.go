package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

type Config struct {
	Port           string `env:"PORT,default=8080"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS,default=http://localhost:5173"`

	// Database Config. An empty URL disables the game archive.
	DatabaseURL       string        `env:"DATABASE_URL"`
	DatabaseDriver    string        `env:"DATABASE_DRIVER,default=postgres"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=5m"`

	// Redis Config. An empty address disables the history cache.
	RedisURL        string        `env:"REDIS_URL"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	HistoryCacheTTL time.Duration `env:"HISTORY_CACHE_TTL,default=10m"`

	// Tables
	TableSecret      string        `env:"TABLE_SECRET,default=change-this-table-secret"`
	TableTokenTTL    time.Duration `env:"TABLE_TOKEN_TTL,default=24h"`
	TableIdleTimeout time.Duration `env:"TABLE_IDLE_TIMEOUT,default=1h"`
	CleanupInterval  time.Duration `env:"CLEANUP_INTERVAL,default=10m"`

	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	LogFile         string        `env:"LOG_FILE"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=30s"`
}

// LoadEnvFiles loads .env from the working directory or its parent. Missing
// files are not an error, the process environment is used as is.
func LoadEnvFiles() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Debug().Str("component", "config").Msg("No .env file found, using environment variables")
		}
	}
}

// LoadConfig decodes the process environment into a Config and validates it.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	cfg.DatabaseURL = withSimpleProtocol(cfg.DatabaseURL, cfg.DatabaseDriver)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}

	switch c.DatabaseDriver {
	case DriverPostgres, DriverPgx:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want %q or %q)", c.DatabaseDriver, DriverPostgres, DriverPgx)
	}

	durations := map[string]time.Duration{
		"TABLE_TOKEN_TTL":    c.TableTokenTTL,
		"TABLE_IDLE_TIMEOUT": c.TableIdleTimeout,
		"CLEANUP_INTERVAL":   c.CleanupInterval,
		"SHUTDOWN_TIMEOUT":   c.ShutdownTimeout,
		"HISTORY_CACHE_TTL":  c.HistoryCacheTTL,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}

	if c.TableSecret == "" {
		return errors.New("TABLE_SECRET must not be empty")
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS on commas, dropping blanks.
func (c *Config) Origins() []string {
	origins := []string{}
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Append simple_protocol for PgBouncer compatibility (pgx driver only)
func withSimpleProtocol(dbURL, driver string) string {
	if dbURL == "" || driver != DriverPgx {
		return dbURL
	}
	u, err := url.Parse(dbURL)
	if err != nil {
		return dbURL
	}
	q := u.Query()
	if q.Get("default_query_exec_mode") == "" {
		q.Set("default_query_exec_mode", "simple_protocol")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
