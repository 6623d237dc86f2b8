// Package kv provides the durable key-value storage the stores persist to.
//
// A Storage holds opaque string values under string keys. Get reports a
// never-written key with ok=false and a nil error; only transport or I/O
// problems are errors. Backends:
//
//   - file: one file per key under a directory (default)
//   - memory: in-process map, for tests and throwaway sessions
//   - sqlite: a single kv table in a SQLite database
//   - redis: plain GET/SET with an optional key prefix
//   - postgres: a single kv table reached through a pgx pool
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Storage is the durable key-value persistence API.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Close releases the backend's resources.
	Close() error
}

// ErrClosed is returned by operations on a closed storage.
var ErrClosed = errors.New("kv: storage closed")

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// pingTimeout bounds the connectivity check for network backends.
const pingTimeout = 3 * time.Second

// Config selects a backend and carries its settings.
type Config struct {
	Backend string

	// Dir is the directory for the file backend.
	Dir string

	SQLitePath string

	RedisAddr     string
	RedisURL      string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	PostgresDSN string
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg Config) (Storage, error) {
	var (
		s   Storage
		err error
	)
	switch cfg.Backend {
	case "", BackendFile:
		s, err = openFile(cfg.Dir)
	case BackendMemory:
		s = NewMemoryStorage()
	case BackendSQLite:
		s, err = openSQLite(ctx, cfg.SQLitePath)
	case BackendRedis:
		s, err = openRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			URL:      cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case BackendPostgres:
		s, err = openPostgres(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// The open* helpers keep a failed constructor from leaking a typed nil
// pointer into the Storage interface.

func openFile(dir string) (Storage, error) {
	s, err := NewFileStorage(dir)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openSQLite(ctx context.Context, path string) (Storage, error) {
	s, err := NewSQLiteStorage(ctx, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openRedis(ctx context.Context, opts RedisOptions) (Storage, error) {
	s, err := NewRedisStorage(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openPostgres(ctx context.Context, dsn string) (Storage, error) {
	s, err := NewPostgresStorage(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return s, nil
}
