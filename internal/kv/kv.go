// Package kv holds the single-slot blob stores behind the desktop library
// and the extension connection state. Every value is an opaque snapshot that
// callers read, modify and write back whole.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/arvai/internal/logger"
)

// ErrNotFound is returned by Load when nothing is stored under a key.
var ErrNotFound = errors.New("kv: key not found")

// Store is a key -> blob store.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	SQLitePath string
	Redis      RedisOptions
}

// Open builds the configured backend.
func Open(ctx context.Context, opts Options, log logger.Logger) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendSQLite:
		return OpenSQLite(opts.SQLitePath)
	case BackendRedis:
		client, err := DialRedis(ctx, opts.Redis, log)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, opts.Redis.KeyPrefix), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown kv backend %q", opts.Backend)
	}
}
