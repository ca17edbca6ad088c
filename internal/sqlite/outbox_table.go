package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

var _ types.Table = (*outboxTable)(nil)

// outboxTable exposes the pending replication mutations. Entries are added by
// trip writes while a replicator is configured and removed when a
// replication round succeeds.
type outboxTable struct {
	backend *Backend
}

// Get retrieves a pending mutation by mutation ID.
func (ot *outboxTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	b := ot.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDataStoreDetached
	}

	row := b.db.QueryRow(
		"SELECT mutation_id, operation, trip_id, payload, created_at FROM outbox WHERE mutation_id = ?", id,
	)
	m, err := hydrateMutation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting mutation %s: %w", id, err)
	}
	return m, nil
}

// Set enqueues a mutation. An empty id generates a UUID v7. Existing
// mutations are immutable; setting one again returns ErrInvalidData.
func (ot *outboxTable) Set(id string, data any) (string, error) {
	m, ok := data.(*types.Mutation)
	if !ok || m == nil {
		return "", types.ErrInvalidData
	}
	if id == "" {
		id = m.MutationID
	}
	if id == "" {
		id = newUUID()
	}
	m.MutationID = id
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := m.Validate(); err != nil {
		return "", err
	}

	b := ot.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrDataStoreDetached
	}

	var exists bool
	err := b.db.QueryRow("SELECT 1 FROM outbox WHERE mutation_id = ?", id).Scan(&exists)
	if err == nil {
		return "", types.ErrInvalidData
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("checking mutation existence: %w", err)
	}

	if err := insertMutation(b.db, m); err != nil {
		return "", fmt.Errorf("persisting mutation: %w", err)
	}
	if err := b.persistOutboxJSONL(); err != nil {
		return "", err
	}
	return id, nil
}

// Delete drops a pending mutation without replicating it.
func (ot *outboxTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	b := ot.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDataStoreDetached
	}

	res, err := b.db.Exec("DELETE FROM outbox WHERE mutation_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting mutation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting mutation: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return b.persistOutboxJSONL()
}

// Fetch returns pending mutations in the order they were recorded.
// The only filter key is "trip_id" (string).
func (ot *outboxTable) Fetch(filter types.Filter) ([]any, error) {
	b := ot.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDataStoreDetached
	}

	query := "SELECT mutation_id, operation, trip_id, payload, created_at FROM outbox"
	var args []any
	if v, ok := filter["trip_id"]; ok {
		tripID, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		query += " WHERE trip_id = ?"
		args = append(args, tripID)
	}
	query += " ORDER BY seq ASC"

	muts, err := queryMutations(b.db, query, args...)
	if err != nil {
		return nil, err
	}
	results := make([]any, 0, len(muts))
	for _, m := range muts {
		results = append(results, m)
	}
	return results, nil
}

// pendingMutations returns the whole outbox in order.
// The caller must hold b.mu.
func (b *Backend) pendingMutations() ([]types.Mutation, error) {
	muts, err := queryMutations(b.db,
		"SELECT mutation_id, operation, trip_id, payload, created_at FROM outbox ORDER BY seq ASC")
	if err != nil {
		return nil, err
	}
	out := make([]types.Mutation, 0, len(muts))
	for _, m := range muts {
		out = append(out, *m)
	}
	return out, nil
}

func queryMutations(db *sql.DB, query string, args ...any) ([]*types.Mutation, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching mutations: %w", err)
	}
	defer rows.Close()

	var muts []*types.Mutation
	for rows.Next() {
		m, err := hydrateMutation(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating mutation: %w", err)
		}
		muts = append(muts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mutations: %w", err)
	}
	return muts, nil
}

// hydrateMutation converts a SQLite row into a *types.Mutation.
func hydrateMutation(row scanner) (*types.Mutation, error) {
	var m types.Mutation
	var payload sql.NullString
	var createdAt string
	if err := row.Scan(&m.MutationID, &m.Operation, &m.TripID, &payload, &createdAt); err != nil {
		return nil, err
	}
	if payload.Valid && payload.String != "" {
		var t types.Trip
		if err := json.Unmarshal([]byte(payload.String), &t); err != nil {
			return nil, fmt.Errorf("parsing payload: %w", err)
		}
		m.Trip = &t
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &m, nil
}

// insertMutation appends a mutation to the outbox.
func insertMutation(x execer, m *types.Mutation) error {
	var payload any
	if m.Trip != nil {
		data, err := json.Marshal(m.Trip)
		if err != nil {
			return fmt.Errorf("marshaling payload: %w", err)
		}
		payload = string(data)
	}
	_, err := x.Exec(
		"INSERT INTO outbox (mutation_id, operation, trip_id, payload, created_at) VALUES (?, ?, ?, ?, ?)",
		m.MutationID, m.Operation, m.TripID, payload, formatTime(m.CreatedAt),
	)
	return err
}

// outboxJSONLRecord matches the JSONL format for the outbox. The payload is
// nested JSON rather than an escaped string.
type outboxJSONLRecord struct {
	MutationID string          `json:"mutation_id"`
	Operation  string          `json:"operation"`
	TripID     string          `json:"trip_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

// persistOutboxJSONL writes the outbox to outbox.jsonl in queue order.
// The caller must hold b.mu.
func (b *Backend) persistOutboxJSONL() error {
	rows, err := b.db.Query(
		"SELECT mutation_id, operation, trip_id, payload, created_at FROM outbox ORDER BY seq ASC",
	)
	if err != nil {
		return fmt.Errorf("querying outbox for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec outboxJSONLRecord
		var payload sql.NullString
		if err := rows.Scan(&rec.MutationID, &rec.Operation, &rec.TripID, &payload, &rec.CreatedAt); err != nil {
			return fmt.Errorf("scanning outbox for JSONL: %w", err)
		}
		if payload.Valid && payload.String != "" {
			rec.Payload = json.RawMessage(payload.String)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling outbox for JSONL: %w", err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating outbox for JSONL: %w", err)
	}

	if err := writeJSONL(filepath.Join(b.config.DataDir, outboxJSONL), records); err != nil {
		return fmt.Errorf("persisting %s: %w", outboxJSONL, err)
	}
	return nil
}
