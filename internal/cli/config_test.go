package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, "dialogs.yaml", cfg.Dialogs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "chatdialog:", cfg.Storage.Prefix)
	assert.Equal(t, 30*time.Second, cfg.Storage.LockTTL)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.True(t, cfg.HTTP.Metrics)
	assert.Equal(t, "stdio", cfg.MCP.Transport)
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chatdialog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dialogs: bot.yaml
log:
  level: warn
storage:
  backend: sqlite
  dsn: chat.db
  ttl: 1h
http:
  port: 9000
`), 0o644))

	t.Setenv("CHATDIALOG_STORAGE_DSN", "other.db")
	t.Setenv("CHATDIALOG_STORAGE_FALLBACK_KEYS", "a,b")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.Int("port", 8080, "")
	require.NoError(t, flags.Set("log-level", "debug"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "bot.yaml", cfg.Dialogs)
	assert.Equal(t, "debug", cfg.Log.Level, "changed flags win")
	assert.Equal(t, 9000, cfg.HTTP.Port, "unchanged flags do not override the file")
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "other.db", cfg.Storage.DSN, "env overrides the file")
	assert.Equal(t, time.Hour, cfg.Storage.TTL)
	assert.Equal(t, []string{"a", "b"}, cfg.Storage.FallbackKeys)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.ErrorContains(t, err, "read config")
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("CHATDIALOG_STORAGE_BACKEND", "etcd")
		_, err := LoadConfig("", nil)
		assert.ErrorContains(t, err, `unknown storage backend "etcd"`)
	})

	t.Run("sql without dsn", func(t *testing.T) {
		t.Setenv("CHATDIALOG_STORAGE_BACKEND", "postgres")
		_, err := LoadConfig("", nil)
		assert.ErrorContains(t, err, "requires a dsn")
	})

	t.Run("unknown transport", func(t *testing.T) {
		t.Setenv("CHATDIALOG_MCP_TRANSPORT", "websocket")
		_, err := LoadConfig("", nil)
		assert.ErrorContains(t, err, "unknown mcp transport")
	})
}

func TestLoadDotEnv(t *testing.T) {
	const key = "CHATDIALOG_DOTENV_PROBE"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o644))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv(key))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
