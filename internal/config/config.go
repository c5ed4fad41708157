// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ErrConfigMissing is returned when DATABASE_URL is not set.
var ErrConfigMissing = errors.New("DATABASE_URL is not set; export the database connection string before starting")

// Config holds everything main needs to wire the editor.
type Config struct {
	DatabaseURL string
	Addr        string
	LogLevel    slog.Level
	LogFormat   string
	SnapshotTTL time.Duration
}

// DefaultConfig returns a Config with every optional value at its default.
// DatabaseURL has no default.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		LogLevel:    slog.LevelInfo,
		LogFormat:   "text",
		SnapshotTTL: 30 * time.Minute,
	}
}

// LoadConfig reads configuration from environment variables. Invalid optional
// values are ignored in favor of defaults; a missing DATABASE_URL is an error.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("OBJETIVOS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("OBJETIVOS_LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			cfg.LogLevel = lvl
		}
	}
	if v := strings.ToLower(os.Getenv("OBJETIVOS_LOG_FORMAT")); v == "text" || v == "json" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("OBJETIVOS_SNAPSHOT_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SnapshotTTL = d
		}
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, ErrConfigMissing
	}
	return cfg, nil
}

// Logger builds the process logger writing to w. When level is non-nil it is
// set to c.LogLevel and kept by the handler, so callers can adjust verbosity
// later.
func (c Config) Logger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	var leveler slog.Leveler = c.LogLevel
	if level != nil {
		level.Set(c.LogLevel)
		leveler = level
	}
	opts := &slog.HandlerOptions{Level: leveler}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
