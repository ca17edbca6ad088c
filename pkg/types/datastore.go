package types

import (
	"context"
	"errors"
)

// DataStore is the synchronized trip store the grid editor talks to.
// Callers attach to a backend, access tables by name, and detach when done.
// Clear and Start together form the reset cycle: Clear drops every locally
// cached record and pending mutation, Start (re)starts synchronization.
type DataStore interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// Attach connects the DataStore to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached if
	// called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations on tables return ErrDataStoreDetached.
	Detach() error

	// Clear removes all locally cached entities and pending mutations.
	Clear() error

	// Start begins synchronization. Without a configured replicator it only
	// marks the store as started.
	Start(ctx context.Context) error
}

// Replicator exchanges pending local mutations for the authoritative set of
// trips held by a sync server.
type Replicator interface {
	Replicate(ctx context.Context, pending []Mutation) (*Snapshot, error)
}

// Snapshot is the result of one replication round.
type Snapshot struct {
	Trips    []*Trip     `json:"trips"`
	Rejected []Rejection `json:"rejected,omitempty"`
}

// Rejection reports a pushed mutation the server refused to apply.
type Rejection struct {
	MutationID string `json:"mutationId"`
	Reason     string `json:"reason"`
}

// DataStore lifecycle errors.
var (
	ErrDataStoreDetached = errors.New("data store is detached")
	ErrAlreadyAttached   = errors.New("data store is already attached")
	ErrTableNotFound     = errors.New("table not found")
)
