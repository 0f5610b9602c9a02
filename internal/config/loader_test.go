package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doclens.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfigFile(t, `
log_level: debug
documents:
  dir: /srv/docs
cache:
  backend: redis
  redis_addr: redis.internal:6379
  ttl_days: 3
scan:
  batch_size: 8
`)

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/srv/docs", cfg.Documents.Dir)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, "redis.internal:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 3, cfg.Cache.TTLDays)
	assert.Equal(t, 8, cfg.Scan.BatchSize)

	// Keys the file omits keep their defaults.
	assert.Equal(t, "eng", cfg.OCR.Languages)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadWithFile_Missing(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	_, err := NewLoader().LoadWithFile("/nonexistent/doclens.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadWithFile_InvalidValuesRejected(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := writeConfigFile(t, "log_level: loud\n")

	_, err := NewLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("DOCLENS_OCR_LANGUAGES", "eng,deu")
	t.Setenv("DOCLENS_SCAN_BATCH_SIZE", "6")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "eng,deu", cfg.OCR.Languages)
	assert.Equal(t, 6, cfg.Scan.BatchSize)
}
