package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "./documents", cfg.Documents.Dir)
	assert.Equal(t, "eng", cfg.OCR.Languages)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 7, cfg.Cache.TTLDays)
	assert.Equal(t, 4, cfg.Scan.BatchSize)
	assert.Equal(t, 2.0, cfg.Print.Scale)
	assert.Equal(t, 8080, cfg.Server.Port)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"bad cache backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache backend"},
		{"redis without addr", func(c *Config) {
			c.Cache.Backend = "redis"
			c.Cache.RedisAddr = ""
		}, "redis_addr"},
		{"redis with addr ok", func(c *Config) { c.Cache.Backend = "redis" }, ""},
		{"negative ttl", func(c *Config) { c.Cache.TTLDays = -1 }, "ttl_days"},
		{"negative batch size", func(c *Config) { c.Scan.BatchSize = -2 }, "batch_size"},
		{"negative print scale", func(c *Config) { c.Print.Scale = -0.5 }, "scale"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCacheTTL(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 7*24*time.Hour, cfg.CacheTTL())

	cfg.Cache.TTLDays = 1
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL())

	// Zero and negative fall back to the default week.
	cfg.Cache.TTLDays = 0
	assert.Equal(t, 7*24*time.Hour, cfg.CacheTTL())
}

func TestOCRTimeout(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 60*time.Second, cfg.OCRTimeout())

	cfg.OCR.TimeoutSec = 5
	assert.Equal(t, 5*time.Second, cfg.OCRTimeout())

	cfg.OCR.TimeoutSec = 0
	assert.Equal(t, 60*time.Second, cfg.OCRTimeout())
}

func TestUseRedisCache(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.UseRedisCache())

	cfg.Cache.Backend = "redis"
	assert.True(t, cfg.UseRedisCache())
}
