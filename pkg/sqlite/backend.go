// Package sqlite provides the public API for the SQLite trip store backend.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/tripgrid/internal/sqlite"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// Option configures a backend created by NewBackend.
type Option = sqlite.Option

// WithReplicator makes every write queue a mutation and makes Start exchange
// the queue with r.
func WithReplicator(r types.Replicator) Option {
	return sqlite.WithReplicator(r)
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".tripgrid-db",
//	})
//	defer backend.Detach()
func NewBackend(opts ...Option) types.DataStore {
	return sqlite.NewBackend(opts...)
}
