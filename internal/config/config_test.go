package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POLL_INTERVAL_SECONDS", "")
	t.Setenv("REMOTE_BASE_URL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, cfg.Poll.Interval())
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Empty(t, cfg.Remote.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout())
	assert.Equal(t, 2*time.Second, cfg.Console.DedupeWindow())
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "console.env")
	require.NoError(t, os.WriteFile(path, []byte("REMOTE_BASE_URL=http://backend:9000/\nPOLL_INTERVAL_SECONDS=15\n"), 0o600))
	t.Setenv("REMOTE_BASE_URL", "")
	t.Setenv("POLL_INTERVAL_SECONDS", "")
	os.Unsetenv("REMOTE_BASE_URL")
	os.Unsetenv("POLL_INTERVAL_SECONDS")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000", cfg.Remote.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Poll.Interval())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	t.Setenv("REDIS_DB", "0")
	t.Setenv("POLL_INTERVAL_SECONDS", "-1")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
