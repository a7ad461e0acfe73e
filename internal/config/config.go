// Package config loads techtrack settings.
//
// Values are layered: built-in defaults, then a YAML file, then
// TECHTRACK_* environment variables (optionally read from a .env file).
// Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fetrias/techtrack/internal/query"
	"github.com/fetrias/techtrack/internal/store"
)

// DefaultFile is read when no config file is named and it exists in the
// working directory.
const DefaultFile = "techtrack.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TECHTRACK_"

// Config is the full set of runtime settings.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Search  SearchConfig  `yaml:"search"`
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects the persistence backend and collection key.
type StorageConfig struct {
	Backend  string         `yaml:"backend"`
	Path     string         `yaml:"path"`
	Key      string         `yaml:"key"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// PostgresConfig configures the postgres backend.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// SearchConfig tunes interactive search.
type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Error reports an invalid or unreadable configuration.
type Error struct {
	Field  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "config: " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if err is or wraps a config *Error.
func IsConfigError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: store.BackendSQLite,
			Path:    "techtrack.db",
			Key:     store.DefaultCollectionKey,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: store.DefaultRedisPrefix,
			},
		},
		Search: SearchConfig{Debounce: query.DefaultDebounce},
		API: APIConfig{
			Addr:        "127.0.0.1:8080",
			CORSOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadOptions controls Load.
type LoadOptions struct {
	// File is the YAML file to read. Empty means DefaultFile if present.
	File string

	// DotEnv lists .env files to load into the environment. Missing files
	// are ignored. Variables already set are not overridden.
	DotEnv []string

	// LookupEnv reads environment variables; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Load builds a Config from defaults, the YAML file and the environment.
// It does not validate; call Validate after applying flags.
func Load(opts LoadOptions) (*Config, error) {
	for _, f := range opts.DotEnv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, &Error{Field: f, Reason: "reading env file", Err: err}
		}
	}

	cfg := Default()

	path, required := opts.File, true
	if path == "" {
		path, required = DefaultFile, false
	}
	if err := cfg.mergeFile(path, required); err != nil {
		return nil, err
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &Error{Field: path, Reason: "reading config file", Err: err}
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &Error{Field: path, Reason: "parsing config file", Err: err}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("BACKEND", &c.Storage.Backend)
	str("DB", &c.Storage.Path)
	str("KEY", &c.Storage.Key)
	str("REDIS_ADDR", &c.Storage.Redis.Addr)
	str("REDIS_PASSWORD", &c.Storage.Redis.Password)
	str("REDIS_PREFIX", &c.Storage.Redis.Prefix)
	str("POSTGRES_DSN", &c.Storage.Postgres.DSN)
	str("API_ADDR", &c.API.Addr)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup(EnvPrefix + "REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: EnvPrefix + "REDIS_DB", Reason: "not an integer", Err: err}
		}
		c.Storage.Redis.DB = n
	}
	if v, ok := lookup(EnvPrefix + "DEBOUNCE"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &Error{Field: EnvPrefix + "DEBOUNCE", Reason: "not a duration", Err: err}
		}
		c.Search.Debounce = d
	}
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.API.CORSOrigins = origins
	}
	return nil
}

// Validate checks the settings are usable.
func (c *Config) Validate() error {
	if !slices.Contains(store.Backends, c.Storage.Backend) {
		return &Error{Field: "storage.backend", Reason: fmt.Sprintf("unknown backend %q (want one of %s)", c.Storage.Backend, strings.Join(store.Backends, ", "))}
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return &Error{Field: "storage.key", Reason: "must not be empty"}
	}
	switch c.Storage.Backend {
	case store.BackendSQLite:
		if c.Storage.Path == "" {
			return &Error{Field: "storage.path", Reason: "required for the sqlite backend"}
		}
	case store.BackendPostgres:
		if c.Storage.Postgres.DSN == "" {
			return &Error{Field: "storage.postgres.dsn", Reason: "required for the postgres backend"}
		}
	case store.BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return &Error{Field: "storage.redis.addr", Reason: "required for the redis backend"}
		}
	}
	if c.Search.Debounce <= 0 {
		return &Error{Field: "search.debounce", Reason: "must be positive"}
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return &Error{Field: "log.level", Reason: fmt.Sprintf("unknown level %q (want one of %s)", c.Log.Level, strings.Join(logLevels, ", "))}
	}
	return nil
}

// StoreOptions converts the storage settings for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:       c.Storage.Backend,
		Path:          c.Storage.Path,
		PostgresDSN:   c.Storage.Postgres.DSN,
		RedisAddr:     c.Storage.Redis.Addr,
		RedisPassword: c.Storage.Redis.Password,
		RedisDB:       c.Storage.Redis.DB,
		RedisPrefix:   c.Storage.Redis.Prefix,
	}
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
