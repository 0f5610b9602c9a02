package config

import (
	"fmt"
	"time"
)

const (
	backendMemory = "memory"
	backendRedis  = "redis"
)

// Default returns a configuration with all defaults applied, matching the
// loader's defaults without going through viper.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Documents: DocumentsConfig{
			Dir: "./documents",
		},
		OCR: OCRConfig{
			Languages:  "eng",
			TimeoutSec: 60,
		},
		Cache: CacheConfig{
			Backend:   backendMemory,
			TTLDays:   7,
			RedisAddr: "localhost:6379",
		},
		Scan: ScanConfig{
			BatchSize: 4,
		},
		Print: PrintConfig{
			Scale: 2.0,
		},
		Server: ServerConfig{
			Host:              "localhost",
			Port:              8080,
			CORSOrigin:        "*",
			TimeoutSec:        120,
			ShutdownTimeout:   10,
			RequestsPerMinute: 60,
			RequestsPerHour:   1000,
			MaxRequestsPerDay: 5000,
		},
	}
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (must be debug, info, warn or error)", c.LogLevel)
	}

	switch c.Cache.Backend {
	case "", backendMemory:
	case backendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache backend %q requires redis_addr", backendRedis)
		}
	default:
		return fmt.Errorf("invalid cache backend %q (must be %s or %s)", c.Cache.Backend, backendMemory, backendRedis)
	}

	if c.Cache.TTLDays < 0 {
		return fmt.Errorf("cache ttl_days must not be negative, got %d", c.Cache.TTLDays)
	}
	if c.Scan.BatchSize < 0 {
		return fmt.Errorf("scan batch_size must not be negative, got %d", c.Scan.BatchSize)
	}
	if c.Print.Scale < 0 {
		return fmt.Errorf("print scale must not be negative, got %g", c.Print.Scale)
	}
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// CacheTTL returns the configured coordinate cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	days := c.Cache.TTLDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// OCRTimeout returns the per-recognition timeout as a duration.
func (c *Config) OCRTimeout() time.Duration {
	sec := c.OCR.TimeoutSec
	if sec <= 0 {
		sec = 60
	}
	return time.Duration(sec) * time.Second
}

// UseRedisCache reports whether the Redis cache backend is selected.
func (c *Config) UseRedisCache() bool {
	return c.Cache.Backend == backendRedis
}
