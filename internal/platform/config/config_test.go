package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 256, cfg.Server.ClientSendBuffer)
	assert.Equal(t, "data/quest.db", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, Validate(cfg))
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
server:
  addr: ":9090"
  shutdown_timeout: 3s
  allowed_origins: ["http://localhost:3000"]
storage:
  path: /tmp/q.db
log:
  level: debug
`)
	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "/tmp/q.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched fields keep defaults
	assert.Equal(t, 64, cfg.Server.InputBuffer)
}

func TestEnvOverridesYAML(t *testing.T) {
	t.Setenv("QUEST_ADDR", ":7070")
	t.Setenv("QUEST_LOG_LEVEL", "warn")
	t.Setenv("QUEST_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse([]byte("server:\n  addr: \":9090\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("log:\n  level: chatty\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")

	_, err = Parse([]byte("server:\n  max_message_size: 8\n"))
	require.Error(t, err)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  disabled: true\n  path: \"\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Storage.Disabled)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("QUEST_TEST_DOTENV=yes\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("QUEST_TEST_DOTENV") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "yes", os.Getenv("QUEST_TEST_DOTENV"))
	require.NoError(t, loadDotEnv(filepath.Join(dir, "missing.env")))
}
