package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Backend names accepted by Open.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Backends lists the supported backend names.
var Backends = []string{BackendSQLite, BackendPostgres, BackendRedis, BackendMemory}

// Options selects and configures a backend.
type Options struct {
	Backend       string
	Path          string // sqlite database file
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open creates the medium described by opts.
func Open(ctx context.Context, opts Options) (Medium, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		return OpenSQLite(opts.Path)
	case BackendPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend requires a DSN")
		}
		return OpenPostgres(opts.PostgresDSN)
	case BackendRedis:
		prefix := opts.RedisPrefix
		if prefix == "" {
			prefix = DefaultRedisPrefix
		}
		return OpenRedis(ctx, &redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		}, prefix)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q: must be one of %v", opts.Backend, Backends)
	}
}
