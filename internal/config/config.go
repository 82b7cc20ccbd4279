// Package config loads service configuration from the environment.
//
// A .env file in the working directory is loaded first when present;
// variables already set in the process environment win.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Env is the deployment mode.
type Env string

const (
	EnvDevelopment Env = "development"
	EnvProduction  Env = "production"
	EnvTest        Env = "test"
)

// SQLLogLevel selects which SQL statements are logged.
type SQLLogLevel string

const (
	// SQLLogAll logs every statement.
	SQLLogAll SQLLogLevel = "All"
	// SQLLogOnlySlow logs statements slower than SQLSlowThreshold.
	SQLLogOnlySlow SQLLogLevel = "OnlySlow"
	// SQLLogSilent logs nothing.
	SQLLogSilent SQLLogLevel = "Silent"
)

// Config is the root service configuration.
type Config struct {
	Env Env

	// DatabaseURL connects as the application role, which is subject to RLS.
	DatabaseURL string
	// ReaderDatabaseURL optionally routes read-only transactions to a replica.
	ReaderDatabaseURL string
	// AdminDatabaseURL bypasses RLS. Used by migrations, the tenant CLI and seeding.
	AdminDatabaseURL string

	SQLLogLevel      SQLLogLevel
	SQLSlowThreshold time.Duration

	LogLevel  string
	Port      string
	JWTSecret string

	TxMaxWait time.Duration
	TxTimeout time.Duration
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// AuthEnabled reports whether bearer tokens are required.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var errs []error
	cfg := &Config{
		Env:               Env(get("APP_ENV", string(EnvDevelopment))),
		DatabaseURL:       get("APP_DATABASE_URL", ""),
		ReaderDatabaseURL: get("APP_READER_DATABASE_URL", ""),
		AdminDatabaseURL:  get("ADMIN_DATABASE_URL", ""),
		LogLevel:          get("LOG_LEVEL", "info"),
		Port:              get("APP_PORT", "8080"),
		JWTSecret:         get("JWT_SECRET", ""),
	}

	switch cfg.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("APP_ENV: unsupported value %q", cfg.Env))
	}

	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("APP_DATABASE_URL: required"))
	} else if err := validateDatabaseURL(cfg.DatabaseURL); err != nil {
		errs = append(errs, fmt.Errorf("APP_DATABASE_URL: %w", err))
	}
	if cfg.ReaderDatabaseURL != "" {
		if err := validateDatabaseURL(cfg.ReaderDatabaseURL); err != nil {
			errs = append(errs, fmt.Errorf("APP_READER_DATABASE_URL: %w", err))
		}
	}
	if cfg.AdminDatabaseURL != "" {
		if err := validateDatabaseURL(cfg.AdminDatabaseURL); err != nil {
			errs = append(errs, fmt.Errorf("ADMIN_DATABASE_URL: %w", err))
		}
	}

	defaultSQLLevel := SQLLogOnlySlow
	if cfg.Env == EnvTest {
		defaultSQLLevel = SQLLogSilent
	}
	cfg.SQLLogLevel = SQLLogLevel(get("SQL_LOG_LEVEL", string(defaultSQLLevel)))
	switch cfg.SQLLogLevel {
	case SQLLogAll, SQLLogOnlySlow, SQLLogSilent:
	default:
		errs = append(errs, fmt.Errorf("SQL_LOG_LEVEL: unsupported value %q", cfg.SQLLogLevel))
	}

	slowMS, err := strconv.Atoi(get("SQL_SLOW_THRESHOLD_MS", "3"))
	if err != nil || slowMS < 0 {
		errs = append(errs, fmt.Errorf("SQL_SLOW_THRESHOLD_MS: must be a non-negative integer"))
	}
	cfg.SQLSlowThreshold = time.Duration(slowMS) * time.Millisecond

	if cfg.TxMaxWait, err = parseDuration(get("TX_MAX_WAIT", "2s")); err != nil {
		errs = append(errs, fmt.Errorf("TX_MAX_WAIT: %w", err))
	}
	if cfg.TxTimeout, err = parseDuration(get("TX_TIMEOUT", "5s")); err != nil {
		errs = append(errs, fmt.Errorf("TX_TIMEOUT: %w", err))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func validateDatabaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("not a URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("scheme must be postgres or postgresql, got %q", u.Scheme)
	}
	// pgx also accepts the host as a query parameter (Unix sockets).
	if u.Host == "" && u.Query().Get("host") == "" {
		return errors.New("host is required")
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("must not be negative")
	}
	return d, nil
}
