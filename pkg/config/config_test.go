package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "SAFEFLOW_DATA_DIR=" + dir + "\n" +
		"SAFEFLOW_PRICE_API_URL=http://quotes.local\n" +
		"SAFEFLOW_PRICE_CACHE_TTL=1h\n" +
		"SAFEFLOW_BASE_CURRENCY=nzd\n" +
		"DEBUG=true\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	for _, key := range []string{"SAFEFLOW_DATA_DIR", "SAFEFLOW_PRICE_API_URL", "SAFEFLOW_PRICE_CACHE_TTL", "SAFEFLOW_BASE_CURRENCY", "DEBUG", "GEMINI_API_KEY", "SAFEFLOW_DB_PATH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "safeflow.db"), cfg.Paths.GetDatabasePath())
	assert.Equal(t, "http://quotes.local", cfg.Prices.APIURL)
	assert.Equal(t, time.Hour, cfg.Prices.CacheTTL)
	assert.Equal(t, "NZD", cfg.BaseCurrency)
	assert.True(t, cfg.Debug)

	require.NoError(t, cfg.Validate([]string{"prices", "apiUrl"}, []string{"paths", "exportRoot"}))
	err = cfg.Validate([]string{"gemini", "apiKey"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini.apiKey")
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"ttl", "SAFEFLOW_PRICE_CACHE_TTL", "soon"},
		{"currency", "SAFEFLOW_BASE_CURRENCY", "dollars"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envFile := filepath.Join(t.TempDir(), ".env")
			require.NoError(t, os.WriteFile(envFile, nil, 0o600))
			t.Setenv(tt.key, tt.val)

			_, err := Load(envFile)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
