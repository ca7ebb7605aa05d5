package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			errs = append(errs, "SQLITE_PATH is required when STORAGE_DRIVER is sqlite")
		}
	case DriverPostgres:
		if c.Storage.URL == "" {
			errs = append(errs, "DATABASE_URL is required when STORAGE_DRIVER is postgres")
		}
		if c.Storage.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Storage.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.Storage.MaxConns < c.Storage.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Storage.MaxConns, c.Storage.MinConns))
		}
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_DRIVER (%q) must be one of: memory, sqlite, postgres", c.Storage.Driver))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Import.MaxFileSize <= 0 {
		errs = append(errs, "IMPORT_MAX_FILE_SIZE must be positive")
	}
	if c.Import.MaxRows <= 0 {
		errs = append(errs, "IMPORT_MAX_ROWS must be positive")
	}
	if c.Import.MaxConcurrent <= 0 {
		errs = append(errs, "IMPORT_MAX_CONCURRENT must be positive")
	}
	if c.Import.MaxSessions <= 0 {
		errs = append(errs, "IMPORT_MAX_SESSIONS must be positive")
	}
	switch strings.ToLower(c.Import.Encoding) {
	case "utf-8", "utf8", "gb18030":
	default:
		errs = append(errs, fmt.Sprintf("IMPORT_ENCODING (%q) must be one of: utf-8, gb18030", c.Import.Encoding))
	}

	switch c.Calculation.DefaultIntensity {
	case 7, 8, 9:
	default:
		errs = append(errs, fmt.Sprintf("CALC_DEFAULT_INTENSITY (%d) must be 7, 8 or 9", c.Calculation.DefaultIntensity))
	}
	if d := c.Calculation.DefaultDepthCriterion; d != 15 && d != 20 {
		errs = append(errs, fmt.Sprintf("CALC_DEFAULT_DEPTH_CRITERION (%d) must be 15 or 20", d))
	}
	if c.Calculation.DefaultGroundwaterDepth < 0 {
		errs = append(errs, "CALC_DEFAULT_GROUNDWATER_DEPTH must be non-negative")
	}
	switch strings.ToUpper(c.Calculation.DefaultCategory) {
	case "B", "C", "D":
	default:
		errs = append(errs, fmt.Sprintf("CALC_DEFAULT_CATEGORY (%q) must be one of: B, C, D", c.Calculation.DefaultCategory))
	}

	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		errs = append(errs, "REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a loggable representation with the database URL masked.
func (c *Config) String() string {
	url := ""
	if c.Storage.URL != "" {
		url = "[MASKED]"
	}
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Storage: {Driver: %q, URL: %s, SQLitePath: %q}, ", c.Storage.Driver, url, c.Storage.SQLitePath)
	fmt.Fprintf(&b, "Import: {MaxFileSize: %d, MaxRows: %d, Encoding: %q}, ",
		c.Import.MaxFileSize, c.Import.MaxRows, c.Import.Encoding)
	fmt.Fprintf(&b, "Calculation: {Intensity: %d, DepthCriterion: %d, GroundwaterDepth: %g, Category: %q}, ",
		c.Calculation.DefaultIntensity, c.Calculation.DefaultDepthCriterion,
		c.Calculation.DefaultGroundwaterDepth, c.Calculation.DefaultCategory)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ", c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
