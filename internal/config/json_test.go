package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"api_key":                  "json-key",
		"database_dsn":             "postgres://json",
		"session_refresh_interval": "10s",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "json-key", cfg.APIKey)
		assert.Equal(t, "postgres://json", cfg.DatabaseDSN)
		assert.Equal(t, 10*time.Second, cfg.SessionRefreshInterval)
	})

	t.Run("empty fields do not override", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{S3Bucket: "kept"}
		parseJson(cfg)

		assert.Equal(t, "kept", cfg.S3Bucket)
	})

	t.Run("no config flag means no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			APIKey:                 "defaults",
			SessionRefreshInterval: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults", cfg.APIKey)
		assert.Equal(t, 42*time.Second, cfg.SessionRefreshInterval)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}

func Test_parseFlags_Overrides(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-k", "flag-key", "-d", "postgres://flag", "-i", "7"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "flag-key", cfg.APIKey)
	assert.Equal(t, "postgres://flag", cfg.DatabaseDSN)
	assert.Equal(t, 7*time.Second, cfg.SessionRefreshInterval)
}
