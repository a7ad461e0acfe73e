package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetrias/techtrack/internal/store"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, store.BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "technologies", cfg.Storage.Key)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "techtrack.yaml", `
storage:
  backend: redis
  key: my-techs
  redis:
    addr: redis.local:6380
    db: 2
search:
  debounce: 250ms
api:
  addr: ":9090"
  cors_origins: ["http://example.test"]
log:
  level: debug
`)

	cfg, err := Load(LoadOptions{File: path, LookupEnv: envMap(nil)})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, store.BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "my-techs", cfg.Storage.Key)
	assert.Equal(t, "redis.local:6380", cfg.Storage.Redis.Addr)
	assert.Equal(t, 2, cfg.Storage.Redis.DB)
	assert.Equal(t, store.DefaultRedisPrefix, cfg.Storage.Redis.Prefix, "unset fields keep defaults")
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, ":9090", cfg.API.Addr)
	assert.Equal(t, []string{"http://example.test"}, cfg.API.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, err := Load(LoadOptions{LookupEnv: envMap(nil)})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "nope.yaml"), LookupEnv: envMap(nil)})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "storage: [unterminated")
	_, err := Load(LoadOptions{File: path, LookupEnv: envMap(nil)})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "techtrack.yaml", "storage:\n  key: from-file\n  path: file.db\n")

	cfg, err := Load(LoadOptions{File: path, LookupEnv: envMap(map[string]string{
		"TECHTRACK_KEY":          "from-env",
		"TECHTRACK_BACKEND":      "postgres",
		"TECHTRACK_POSTGRES_DSN": "postgres://localhost/techtrack",
		"TECHTRACK_REDIS_DB":     "3",
		"TECHTRACK_DEBOUNCE":     "1s",
		"TECHTRACK_CORS_ORIGINS": "http://a.test, http://b.test,",
		"TECHTRACK_LOG_LEVEL":    "",
	})})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "from-env", cfg.Storage.Key)
	assert.Equal(t, "file.db", cfg.Storage.Path)
	assert.Equal(t, store.BackendPostgres, cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Storage.Redis.DB)
	assert.Equal(t, time.Second, cfg.Search.Debounce)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.API.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level, "empty env values are ignored")

	opts := cfg.StoreOptions()
	assert.Equal(t, "postgres://localhost/techtrack", opts.PostgresDSN)
	assert.Equal(t, "file.db", opts.Path)
}

func TestLoad_BadEnvValues(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"redis db": {"TECHTRACK_REDIS_DB": "two"},
		"debounce": {"TECHTRACK_DEBOUNCE": "soon"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(LoadOptions{File: writeFile(t, "c.yaml", "{}"), LookupEnv: envMap(env)})
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	const name = "TECHTRACK_API_ADDR"
	require.Empty(t, os.Getenv(name))
	t.Cleanup(func() { os.Unsetenv(name) })

	dotenv := writeFile(t, ".env", name+"=127.0.0.1:7777\n")
	cfg, err := Load(LoadOptions{
		File:   writeFile(t, "c.yaml", "{}"),
		DotEnv: []string{dotenv, filepath.Join(t.TempDir(), "missing.env")},
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7777", cfg.API.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }, "storage.backend"},
		{"empty key", func(c *Config) { c.Storage.Key = "  " }, "storage.key"},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = store.BackendPostgres }, "storage.postgres.dsn"},
		{"redis without addr", func(c *Config) {
			c.Storage.Backend = store.BackendRedis
			c.Storage.Redis.Addr = ""
		}, "storage.redis.addr"},
		{"zero debounce", func(c *Config) { c.Search.Debounce = 0 }, "search.debounce"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestValidate_MemoryBackend(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = store.BackendMemory
	cfg.Storage.Path = ""
	assert.NoError(t, cfg.Validate())
}
