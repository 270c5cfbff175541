package store

import (
	"context"
	"fmt"
	"log/slog"
)

// BackendType selects the persistence mechanism.
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	FileBackend     BackendType = "file"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	RedisBackend    BackendType = "redis"
)

func (b BackendType) IsValid() bool {
	switch b {
	case MemoryBackend, FileBackend, SQLiteBackend, PostgresBackend, RedisBackend:
		return true
	}
	return false
}

// Options carries what each backend needs to open.
type Options struct {
	Backend     BackendType
	FilePath    string
	SQLitePath  string
	PostgresDSN string
	RedisURL    string
	RedisKey    string
}

// Backend is an opened store plus its health probe and cleanup.
// Pinger is nil for backends without a connection.
type Backend struct {
	Store   ItemStore
	Pinger  Pinger
	Cleanup func() error
}

// Open builds the backend selected by opts.
func Open(ctx context.Context, opts Options, log *slog.Logger) (*Backend, error) {
	if log == nil {
		log = slog.Default()
	}
	if !opts.Backend.IsValid() {
		return nil, fmt.Errorf("store: invalid backend type: %q", opts.Backend)
	}
	nop := func() error { return nil }

	switch opts.Backend {
	case MemoryBackend:
		log.Info("initialized memory backend")
		return &Backend{Store: NewMemoryStore(), Cleanup: nop}, nil

	case FileBackend:
		if opts.FilePath == "" {
			return nil, fmt.Errorf("store: file path is required for file backend")
		}
		log.Info("initialized file backend", "path", opts.FilePath)
		return &Backend{Store: NewFileStore(opts.FilePath), Cleanup: nop}, nil

	case SQLiteBackend:
		s, err := OpenSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("initialized sqlite backend", "path", opts.SQLitePath)
		return &Backend{Store: s, Pinger: s, Cleanup: s.Close}, nil

	case PostgresBackend:
		s, err := OpenPostgres(ctx, opts.PostgresDSN, log)
		if err != nil {
			return nil, err
		}
		log.Info("initialized postgres backend")
		return &Backend{Store: s, Pinger: s, Cleanup: s.Close}, nil

	case RedisBackend:
		s, err := OpenRedis(ctx, opts.RedisURL, opts.RedisKey)
		if err != nil {
			return nil, err
		}
		log.Info("initialized redis backend", "key", opts.RedisKey)
		return &Backend{Store: s, Pinger: s, Cleanup: s.Close}, nil
	}
	return nil, fmt.Errorf("store: unsupported backend type: %q", opts.Backend)
}
