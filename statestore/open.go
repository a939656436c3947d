package statestore

import (
	"context"
	"fmt"
	"io"
)

// Backend selects a Store implementation.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendFile     Backend = "file"
	BackendPostgres Backend = "postgres"
)

// Config selects and configures a Store.
type Config struct {
	Backend Backend
	// Path is the state file of BackendFile.
	Path string
	// DSN is the connection string of BackendPostgres.
	DSN string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open creates the Store selected by cfg. The returned Closer releases the resources of the store
// and must be called once the store is no longer used.
func Open(ctx context.Context, cfg Config) (Store, io.Closer, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nopCloser{}, nil
	case BackendFile:
		s, err := NewFileStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}

		return s, nopCloser{}, nil
	case BackendPostgres:
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("statestore: DSN is required for the %s backend", cfg.Backend)
		}
		s, err := OpenSQLStore(ctx, "postgres", cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("statestore: unknown backend %q", cfg.Backend)
	}
}
