// Package config loads application settings from environment variables,
// applies defaults and validates everything at startup.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	Import      ImportConfig
	Calculation CalculationConfig
	Rate        RateLimitConfig
	Security    SecurityConfig
	Logging     LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// StorageConfig selects and configures the result store.
type StorageConfig struct {
	// Driver is one of memory, sqlite, postgres (default: memory)
	Driver string `env:"STORAGE_DRIVER" default:"memory"`

	// URL is the PostgreSQL connection string, required for the postgres driver.
	// DATABASE_URL and DB_URL are both accepted.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// SQLitePath is the database file for the sqlite driver (default: liquefy.db)
	SQLitePath string `env:"SQLITE_PATH" default:"liquefy.db"`

	MaxConns int `env:"DB_MAX_CONNS" default:"10"`
	MinConns int `env:"DB_MIN_CONNS" default:"2"`
}

// ImportConfig limits uploaded tables.
type ImportConfig struct {
	// MaxFileSize is the maximum upload size in bytes (default: 20MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`

	// MaxRows is the maximum number of data rows per file (default: 50000)
	MaxRows int `env:"IMPORT_MAX_ROWS" default:"50000"`

	// Encoding is the fallback text encoding for CSV files: utf-8 or gb18030
	Encoding string `env:"IMPORT_ENCODING" default:"utf-8"`

	// MaxSessions is how many pending imports are kept before the oldest is dropped
	MaxSessions int `env:"IMPORT_MAX_SESSIONS" default:"32"`

	// Sheet is the worksheet read from Excel files; empty means the first
	Sheet string `env:"IMPORT_SHEET"`

	// MaxConcurrent is how many files may be parsed at once (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long an import waits for a parsing slot (default: 10s)
	MaxWait time.Duration `env:"IMPORT_MAX_WAIT" default:"10s"`
}

// CalculationConfig holds the site parameters offered when none are given.
type CalculationConfig struct {
	DefaultIntensity        int     `env:"CALC_DEFAULT_INTENSITY" default:"7"`
	DefaultDepthCriterion   int     `env:"CALC_DEFAULT_DEPTH_CRITERION" default:"15"`
	DefaultGroundwaterDepth float64 `env:"CALC_DEFAULT_GROUNDWATER_DEPTH" default:"2.0"`
	DefaultCategory         string  `env:"CALC_DEFAULT_CATEGORY" default:"B"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit per client IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key authentication on /api routes
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
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
