// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	History   HistoryConfig
	Upload    UploadConfig
	Animation AnimationConfig
	Watch     WatchConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8000)
	Port int `env:"SERVER_PORT" default:"8000"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0 for SSE)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for non-streaming requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// TrustedProxies is a comma-separated list of CIDRs or IPs whose
	// X-Real-IP / X-Forwarded-For headers are honoured. Empty trusts none.
	TrustedProxies string `env:"SERVER_TRUSTED_PROXIES"`
}

// HistoryConfig holds settings for the durable upload history.
type HistoryConfig struct {
	// Driver selects the backing store: duckdb, postgres or memory (default: duckdb)
	Driver string `env:"HISTORY_DRIVER" default:"duckdb"`

	// DSN is the data source name. For duckdb this is a file path.
	// Supports both HISTORY_DSN and DATABASE_URL for compatibility.
	DSN string `env:"HISTORY_DSN" envAlt:"DATABASE_URL" default:"history.duckdb"`

	// Retention is the number of entries kept after every write (default: 5)
	Retention int `env:"HISTORY_RETENTION" default:"5"`

	// Timeout bounds a single history read or write (default: 5s)
	Timeout time.Duration `env:"HISTORY_TIMEOUT" default:"5s"`
}

// UploadConfig holds ingestion settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 32MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"33554432"`

	// MaxWaitTime is how long a second ingestion waits for the first to finish (default: 10s)
	MaxWaitTime time.Duration `env:"INGEST_MAX_WAIT" default:"10s"`

	// APIKeys is a comma-separated list of keys accepted in X-API-Key on
	// upload. Empty leaves uploads open.
	APIKeys string `env:"UPLOAD_API_KEYS"`
}

// AnimationConfig holds the progressive reveal tunables.
type AnimationConfig struct {
	// Step is the progress added per tick (default: 0.04)
	Step float64 `env:"ANIMATION_STEP" default:"0.04"`

	// Interval is the wall-clock tick cadence (default: 35ms)
	Interval time.Duration `env:"ANIMATION_INTERVAL" default:"35ms"`
}

// WatchConfig holds drop-folder settings.
type WatchConfig struct {
	// Dir is a directory watched for new CSV/XLSX files. Empty disables watching.
	Dir string `env:"WATCH_DIR"`

	// Debounce is how long a file must be quiet before it is ingested (default: 500ms)
	Debounce time.Duration `env:"WATCH_DEBOUNCE" default:"500ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Proxies returns the trusted proxy list.
func (c *ServerConfig) Proxies() []string {
	return splitList(c.TrustedProxies)
}

// Keys returns the accepted upload API keys.
func (c *UploadConfig) Keys() []string {
	return splitList(c.APIKeys)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
