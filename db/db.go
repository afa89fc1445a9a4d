// Package db provides the storage backends behind catalog.Store.
package db

import (
	"context"

	"subscription-engine/core/catalog"
	"subscription-engine/internal/errors"
)

// Backend is a storage backend type
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendMemory   Backend = "memory"
)

// Open creates a store for the selected backend. Postgres stores are
// migrated before being returned.
func Open(ctx context.Context, backend Backend, url string) (catalog.Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendPostgres:
		store, err := OpenPostgres(url)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unknown database backend: '%s'", backend)
	}
}
