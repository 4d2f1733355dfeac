// Package config loads csvtable settings from the environment, an optional
// TOML file and built-in defaults, and validates them on startup so a
// misconfigured process fails fast.
package config

import (
	"errors"
	"strconv"
	"time"
)

// ErrConfigMissing is returned when required settings are absent. The
// wrapping error lists every missing variable.
var ErrConfigMissing = errors.New("missing required configuration")

// Config holds the backend (csvtable serve) configuration.
type Config struct {
	Server   ServerConfig    `toml:"server"`
	Storage  StorageConfig   `toml:"storage"`
	Data     DataConfig      `toml:"data"`
	Database DatabaseConfig  `toml:"database"`
	Rate     RateLimitConfig `toml:"rate"`
	Security SecurityConfig  `toml:"security"`
	Logging  LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to; empty means all interfaces.
	Host string `env:"SERVER_HOST" toml:"host"`

	// Port is the port to listen on (default: 3000)
	Port int `env:"PORT" envAlt:"SERVER_PORT" toml:"port" default:"3000" validate:"min=1,max=65535"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" toml:"read_timeout" default:"15s" validate:"min=0"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" toml:"write_timeout" default:"30s" validate:"min=0"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" toml:"idle_timeout" default:"60s" validate:"min=0"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" toml:"shutdown_timeout" default:"30s" validate:"gt=0"`

	// RequestTimeout bounds every request, including the remote fetch.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" toml:"request_timeout" default:"60s" validate:"gt=0"`

	// CORSAllowedOrigins lists origins allowed to call the API; "*" allows any.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" toml:"cors_allowed_origins" default:"*"`
}

// StorageConfig locates the CSV object. Everything but Endpoint and
// UsePathStyle is required.
type StorageConfig struct {
	Region          string `env:"AWS_REGION" toml:"region" required:"true"`
	AccessKeyID     string `env:"AWS_CLIENT_ID" toml:"access_key_id" required:"true"`
	SecretAccessKey string `env:"AWS_CLIENT_SECRET" toml:"secret_access_key" required:"true"`
	Bucket          string `env:"S3_BUCKET" toml:"bucket" required:"true"`
	Key             string `env:"S3_FILE" toml:"key" required:"true"`

	// Endpoint overrides the S3 endpoint for compatible stores (MinIO, LocalStack).
	Endpoint     string `env:"S3_ENDPOINT" toml:"endpoint" validate:"omitempty,url"`
	UsePathStyle bool   `env:"S3_USE_PATH_STYLE" toml:"use_path_style" default:"false"`
}

// DataConfig bounds the fetch-and-decode work.
type DataConfig struct {
	// MaxConcurrent is the number of fetches allowed at once (default: 5)
	MaxConcurrent int `env:"DATA_MAX_CONCURRENT" toml:"max_concurrent" default:"5" validate:"gt=0"`

	// MaxWaitTime is how long a request waits for a fetch slot (default: 30s)
	MaxWaitTime time.Duration `env:"DATA_MAX_WAIT_TIME" toml:"max_wait_time" default:"30s" validate:"gt=0"`
}

// DatabaseConfig holds the optional fetch history store settings.
// History is disabled when URL is empty.
type DatabaseConfig struct {
	URL          string `env:"DATABASE_URL" envAlt:"DB_URL" toml:"url"`
	MaxConns     int    `env:"DB_MAX_CONNS" toml:"max_conns" default:"4" validate:"gt=0,max=1000"`
	MinConns     int    `env:"DB_MIN_CONNS" toml:"min_conns" default:"0" validate:"min=0,max=1000"`
	HistoryLimit int    `env:"HISTORY_LIMIT" toml:"history_limit" default:"50" validate:"min=1,max=1000"`
}

// Enabled reports whether a history database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" toml:"enabled" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" toml:"requests_per_minute" default:"100" validate:"gt=0"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies lists proxy CIDRs or addresses whose forwarding headers
	// are honored.
	TrustedProxies []string `env:"TRUSTED_PROXIES" toml:"trusted_proxies" validate:"dive,cidr|ip"`

	// RequireAPIKey turns on X-API-Key authentication for /api routes.
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" toml:"require_api_key" default:"false"`
	APIKeys       []string `env:"API_KEYS" toml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info).
	// Case is ignored.
	Level string `env:"LOG_LEVEL" toml:"level" default:"info" validate:"oneof=debug info warn error"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" toml:"format" default:"text" validate:"oneof=text json"`
}

// ClientConfig holds settings for the table views (csvtable ui, csvtable tui).
type ClientConfig struct {
	API     APIConfig     `toml:"api"`
	UI      UIConfig      `toml:"ui"`
	Logging LoggingConfig `toml:"logging"`
}

// APIConfig points the API client at a backend.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL" toml:"base_url" default:"http://localhost:3000" validate:"url"`
	Key     string        `env:"API_KEY" toml:"key"`
	Timeout time.Duration `env:"API_TIMEOUT" toml:"timeout" default:"30s" validate:"gt=0"`
}

// UIConfig holds the browser table view listener.
type UIConfig struct {
	Host string `env:"UI_HOST" toml:"host"`
	Port int    `env:"UI_PORT" toml:"port" default:"5173" validate:"min=1,max=65535"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Addr returns the UI listen address in host:port format.
func (c *UIConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Location returns the object URI, e.g. "s3://bucket/key".
func (c *StorageConfig) Location() string {
	return "s3://" + c.Bucket + "/" + c.Key
}
