package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "marketdata", cfg.Database.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "marketdata-archive", cfg.Storage.Bucket)

	// Loader pipeline defaults.
	assert.Equal(t, 4, cfg.Loader.MaxConcurrent)
	assert.Equal(t, 3, cfg.Loader.MaxRetries)
	assert.Equal(t, 60, cfg.Loader.CacheTTLMinutes)
	assert.True(t, cfg.Loader.ContinueOnError)

	// Vendor defaults: no keys, sane timeouts.
	assert.Empty(t, cfg.Sources.FMP.APIKey)
	assert.Equal(t, 30, cfg.Sources.FMP.TimeoutSeconds)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOADER_MAX_CONCURRENT", "8")
	t.Setenv("SOURCES_FMP_API_KEY", "testkey")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Loader.MaxConcurrent)
	assert.Equal(t, "testkey", cfg.Sources.FMP.APIKey)
}
