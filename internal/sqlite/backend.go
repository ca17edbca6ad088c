package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/tripgrid/internal/logging"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// dbFileName is the SQLite file created inside DataDir. It is rebuilt from
// the JSONL files on every Attach.
const dbFileName = "tripgrid.db"

// Compile-time interface check.
var _ types.DataStore = (*Backend)(nil)

// Backend implements the DataStore interface using SQLite as the query engine
// and JSONL files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	started  bool
	config   types.Config
	db       *sql.DB
	tables   map[string]types.Table

	// replicator is optional; when set, every write is also recorded in the
	// outbox and Start pushes the outbox to it.
	replicator types.Replicator
}

// Option configures a Backend.
type Option func(*Backend)

// WithReplicator attaches a replicator that Start uses to synchronize with a
// sync server.
func WithReplicator(r types.Replicator) Option {
	return func(b *Backend) {
		b.replicator = r
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		tables: make(map[string]types.Table),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GetTable returns a Table interface for the specified table name.
// Returns ErrTableNotFound if the table name is not recognized.
// Returns ErrDataStoreDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDataStoreDetached
	}

	table, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return table, nil
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, initializes the SQLite schema, loads
// the JSONL files and, when configured, seeds the trip catalog.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
		config.DataDir = dataDir
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The database is a cache of the JSONL files; start from scratch.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("creating index: %w", err)
		}
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}

	if err := loadAllJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	if config.SeedCatalog {
		if err := seedCatalog(db, dataDir); err != nil {
			db.Close()
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	b.started = false

	b.tables[types.TripsTable] = &tripsTable{backend: b}
	b.tables[types.OutboxTable] = &outboxTable{backend: b}

	return nil
}

// Detach releases all resources held by the backend.
// Closes the SQLite connection. After Detach, all operations return
// ErrDataStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.started = false
	b.tables = make(map[string]types.Table)

	return nil
}

// Clear removes every trip and every pending mutation, both from SQLite and
// from the JSONL files. Writes that were never replicated are lost.
func (b *Backend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDataStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM trips"); err != nil {
		return fmt.Errorf("clearing trips: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM outbox"); err != nil {
		return fmt.Errorf("clearing outbox: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing clear: %w", err)
	}

	if err := b.persistTripsJSONL(); err != nil {
		return err
	}
	if err := b.persistOutboxJSONL(); err != nil {
		return err
	}

	b.started = false
	return nil
}

// Start begins synchronization. Without a replicator it only marks the store
// as started. With one, it pushes the outbox, replaces the local trips with
// the returned snapshot and empties the outbox. The write lock is held for the
// whole round so no local write can slip between push and apply.
func (b *Backend) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDataStoreDetached
	}

	if b.replicator == nil {
		b.started = true
		return nil
	}

	pending, err := b.pendingMutations()
	if err != nil {
		return err
	}

	snapshot, err := b.replicator.Replicate(ctx, pending)
	if err != nil {
		return fmt.Errorf("replicate: %w", err)
	}

	for _, r := range snapshot.Rejected {
		logging.Warn("Mutation rejected by sync server",
			zap.String("mutation_id", r.MutationID),
			zap.String("reason", r.Reason),
		)
	}

	if err := b.applySnapshot(snapshot.Trips); err != nil {
		return fmt.Errorf("apply snapshot: %w", err)
	}

	logging.LogSync(b.config.SyncURL, len(pending), len(snapshot.Trips), len(snapshot.Rejected))
	b.started = true
	return nil
}

// Started reports whether Start has completed since the last Attach or Clear.
func (b *Backend) Started() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.started
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// applySnapshot replaces all trips with the given set and drops the outbox.
// The caller must hold b.mu.
func (b *Backend) applySnapshot(trips []*types.Trip) error {
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM trips"); err != nil {
		return fmt.Errorf("clearing trips: %w", err)
	}
	for _, t := range trips {
		if t == nil || t.TripID == "" {
			continue
		}
		if err := insertTrip(tx, t); err != nil {
			return fmt.Errorf("inserting trip %s: %w", t.TripID, err)
		}
	}
	if _, err := tx.Exec("DELETE FROM outbox"); err != nil {
		return fmt.Errorf("clearing outbox: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	if err := b.persistTripsJSONL(); err != nil {
		return err
	}
	return b.persistOutboxJSONL()
}

// recordsMutations reports whether writes should be queued for replication.
func (b *Backend) recordsMutations() bool {
	return b.replicator != nil
}

// versioned reports whether updates must match the stored version.
func (b *Backend) versioned() bool {
	return b.config.GetConcurrency() == types.ConcurrencyVersioned
}

// newUUID generates a UUID v7 string, falling back to v4 if v7 generation
// fails.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// timeLayout is RFC 3339 with fixed-width nanoseconds so stored timestamps
// sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime renders a timestamp the way every table stores it.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp. Any RFC 3339 form is accepted; empty
// strings parse as the zero time.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
