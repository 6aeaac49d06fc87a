// Package config loads process settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the binaries read.
type Config struct {
	DatabaseURL string
	DBMaxConns  int32
	LockTimeout time.Duration

	LedgerMaxAttempts  int
	LedgerRetryBackoff time.Duration

	ServerPort       string
	AllowedOrigins   string
	RequestBodyLimit int64
	ShutdownTimeout  time.Duration

	AuthSecret   string
	AuthJWKSURL  string
	AuthIssuer   string
	AuthAudience string

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and then the environment. Environment values
// win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("DB_HOST", "localhost:5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "warehouse_ledger")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("LOCK_TIMEOUT", "2s")
	v.SetDefault("LEDGER_MAX_ATTEMPTS", 3)
	v.SetDefault("LEDGER_RETRY_BACKOFF", "20ms")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("REQUEST_BODY_LIMIT", 1<<20)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	for _, key := range []string{"DATABASE_URL", "ALLOWED_ORIGINS", "AUTH_SECRET", "AUTH_JWKS_URL", "AUTH_ISSUER", "AUTH_AUDIENCE"} {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from v, which must carry the keys set up by Load.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DBMaxConns:         v.GetInt32("DB_MAX_CONNS"),
		LockTimeout:        v.GetDuration("LOCK_TIMEOUT"),
		LedgerMaxAttempts:  v.GetInt("LEDGER_MAX_ATTEMPTS"),
		LedgerRetryBackoff: v.GetDuration("LEDGER_RETRY_BACKOFF"),
		ServerPort:         v.GetString("SERVER_PORT"),
		AllowedOrigins:     v.GetString("ALLOWED_ORIGINS"),
		RequestBodyLimit:   v.GetInt64("REQUEST_BODY_LIMIT"),
		ShutdownTimeout:    v.GetDuration("SHUTDOWN_TIMEOUT"),
		AuthSecret:         v.GetString("AUTH_SECRET"),
		AuthJWKSURL:        v.GetString("AUTH_JWKS_URL"),
		AuthIssuer:         v.GetString("AUTH_ISSUER"),
		AuthAudience:       v.GetString("AUTH_AUDIENCE"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
	}

	if cfg.DatabaseURL == "" {
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(v.GetString("DB_USER"), v.GetString("DB_PASSWORD")),
			Host:   v.GetString("DB_HOST"),
			Path:   "/" + v.GetString("DB_NAME"),
		}
		cfg.DatabaseURL = u.String()
	}

	// Postgres reads lock_timeout in whole milliseconds and treats 0 as no limit.
	if cfg.LockTimeout < time.Millisecond {
		return nil, fmt.Errorf("LOCK_TIMEOUT must be at least 1ms, got %s", cfg.LockTimeout)
	}
	if cfg.LedgerMaxAttempts <= 0 {
		return nil, fmt.Errorf("LEDGER_MAX_ATTEMPTS must be positive, got %d", cfg.LedgerMaxAttempts)
	}
	if cfg.RequestBodyLimit <= 0 {
		return nil, fmt.Errorf("REQUEST_BODY_LIMIT must be positive, got %d", cfg.RequestBodyLimit)
	}
	return cfg, nil
}

// Logger returns a slog.Logger for the configured level and format.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
