package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thunderdoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "thunderdoc.db", cfg.Store.Path)
	assert.Equal(t, "", cfg.Store.Prefix)
	assert.False(t, cfg.Store.NoSync)
	assert.Equal(t, time.Second, cfg.Store.Timeout)
	assert.False(t, cfg.Model.Daily)
	assert.False(t, cfg.Model.DevMode)
	assert.Equal(t, 256, cfg.Engine.IndexCacheSize)
	assert.Equal(t, 20, cfg.Engine.DefaultRows)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
store:
  path: /tmp/organs.db
  prefix: test_
  timeout: 250ms
model:
  daily: true
  dev_mode: true
engine:
  index_cache_size: 0
  default_rows: 50
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/organs.db", cfg.Store.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.Timeout)
	assert.True(t, cfg.Model.Daily)
	assert.True(t, cfg.Model.DevMode)
	assert.Equal(t, 0, cfg.Engine.IndexCacheSize)
	assert.Equal(t, 50, cfg.Engine.DefaultRows)
	assert.Equal(t, "test_organ", cfg.CollectionName("organ"))

	level, err := cfg.Log.ZerologLevel()
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "engine:\n  default_rows: 50\n")
	t.Setenv("THUNDERDOC_ENGINE_DEFAULT_ROWS", "7")
	t.Setenv("THUNDERDOC_STORE_NO_SYNC", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Engine.DefaultRows)
	assert.True(t, cfg.Store.NoSync)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store:  StoreConfig{Path: "x.db", Timeout: time.Second},
			Engine: EngineConfig{IndexCacheSize: 1, DefaultRows: 20},
			Log:    LogConfig{Level: "info"},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"cache disabled", func(c *Config) { c.Engine.IndexCacheSize = 0 }, false},
		{"negative cache", func(c *Config) { c.Engine.IndexCacheSize = -1 }, true},
		{"zero rows", func(c *Config) { c.Engine.DefaultRows = 0 }, true},
		{"empty path", func(c *Config) { c.Store.Path = "" }, true},
		{"negative timeout", func(c *Config) { c.Store.Timeout = -time.Second }, true},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"upper-case level", func(c *Config) { c.Log.Level = "WARN" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
