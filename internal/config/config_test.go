package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKNOVA_BACKEND", "")
	t.Setenv("TASKNOVA_DB", "")
	t.Setenv("TASKNOVA_SESSION_SECRET", "")

	cfg, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), cfg.Database.Path)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, time.Second, cfg.Sync.PollInterval)
	assert.Equal(t, "TaskNova", cfg.Google.ListTitle)
	assert.Equal(t, filepath.Join(dir, "session.jwt"), cfg.SessionTokenPath())
}

func TestNew_YAMLWithEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKNOVA_BACKEND", "")
	t.Setenv("TASKNOVA_DB", "")
	t.Setenv("TASKNOVA_SESSION_SECRET", "")
	t.Setenv("TEST_SECRET", "s3cret")

	yamlContent := `
backend: local
database:
  path: /tmp/other.db
auth:
  session_secret: ${TEST_SECRET}
  session_ttl: 2h
sync:
  poll_interval: 250ms
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, YAMLFile), []byte(yamlContent), 0600))

	cfg, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, "s3cret", cfg.Auth.SessionSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.PollInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestNew_TOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TASKNOVA_BACKEND", "")
	t.Setenv("TASKNOVA_DB", "")

	tomlContent := `
backend = "google"

[google]
list_title = "Chores"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, TOMLFile), []byte(tomlContent), 0600))

	cfg, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendGoogle, cfg.Backend)
	assert.Equal(t, "Chores", cfg.Google.ListTitle)
}

func TestNew_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, YAMLFile), []byte("backend: google\n"), 0600))
	t.Setenv("TASKNOVA_BACKEND", "local")
	t.Setenv("TASKNOVA_DB", "/tmp/env.db")

	cfg, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown backend", "backend: firebase\n", "unknown backend"},
		{"bad duration", "sync:\n  poll_interval: soon\n", "poll_interval"},
		{"bad yaml", "backend: [\n", "parsing config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv("TASKNOVA_BACKEND", "")
			require.NoError(t, os.WriteFile(filepath.Join(dir, YAMLFile), []byte(tt.content), 0600))

			_, err := New(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", AppName), DefaultConfigDir())
}

func TestHasToken(t *testing.T) {
	cfg := &Config{Dir: t.TempDir()}
	assert.False(t, cfg.HasToken())

	require.NoError(t, os.WriteFile(cfg.TokenPath(), []byte("{}"), 0600))
	assert.True(t, cfg.HasToken())

	require.NoError(t, cfg.RemoveToken())
	assert.False(t, cfg.HasToken())
}
