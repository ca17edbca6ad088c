package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// Compile-time interface check: tripsTable must implement Table.
var _ types.Table = (*tripsTable)(nil)

// tripsTable implements the Table interface for trips. Each operation
// hydrates/dehydrates between SQLite rows and *types.Trip structs and
// persists changes to trips.jsonl atomically.
type tripsTable struct {
	backend *Backend
}

// Get retrieves a trip by ID.
func (tt *tripsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	b := tt.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDataStoreDetached
	}

	row := b.db.QueryRow("SELECT "+tripColumns+" FROM trips WHERE trip_id = ?", id)
	trip, err := hydrateTrip(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting trip %s: %w", id, err)
	}
	return trip, nil
}

// Set persists a trip. If id is empty, generates a UUID v7 and creates the
// trip. If id is provided and absent, the trip is created under that ID; if
// present, it is updated and its version bumped. Under the versioned
// concurrency policy an update whose Version differs from the stored one
// fails with ErrVersionConflict. On success the trip's ID, Version and
// timestamps are updated in place.
func (tt *tripsTable) Set(id string, data any) (string, error) {
	trip, ok := data.(*types.Trip)
	if !ok || trip == nil {
		return "", types.ErrInvalidData
	}

	b := tt.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return "", types.ErrDataStoreDetached
	}

	if id == "" {
		id = newUUID()
	}

	var storedVersion int64
	var storedCreated string
	exists := true
	err := b.db.QueryRow(
		"SELECT version, created_at FROM trips WHERE trip_id = ?", id,
	).Scan(&storedVersion, &storedCreated)
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return "", fmt.Errorf("checking trip existence: %w", err)
	}

	if exists && b.versioned() && trip.Version != storedVersion {
		return "", fmt.Errorf("trip %s at version %d, write based on %d: %w",
			id, storedVersion, trip.Version, types.ErrVersionConflict)
	}

	// The outbox records the version the write was based on, so the sync
	// server can apply the same conflict check.
	baseVersion := int64(0)
	if exists {
		baseVersion = storedVersion
	}

	now := time.Now().UTC()
	out := *trip
	out.TripID = id
	out.UpdatedAt = now
	if exists {
		out.Version = storedVersion + 1
		out.CreatedAt, err = parseTime(storedCreated)
		if err != nil {
			return "", fmt.Errorf("parsing created_at: %w", err)
		}
	} else {
		out.Version = 1
		out.CreatedAt = now
	}

	tx, err := b.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if exists {
		_, err = tx.Exec(
			`UPDATE trips SET name = ?, description = ?, location = ?, date = ?, image = ?,
			 title = ?, tooltip_text = ?, version = ?, updated_at = ? WHERE trip_id = ?`,
			out.Name, out.Description, out.Location, out.Date, out.Image,
			out.Title, out.TooltipText, out.Version, formatTime(out.UpdatedAt), id,
		)
	} else {
		err = insertTrip(tx, &out)
	}
	if err != nil {
		return "", fmt.Errorf("persisting trip: %w", err)
	}

	if b.recordsMutations() {
		pushed := out
		pushed.Version = baseVersion
		m := &types.Mutation{
			MutationID: newUUID(),
			Operation:  types.MutationSave,
			TripID:     id,
			Trip:       &pushed,
			CreatedAt:  now,
		}
		if err := insertMutation(tx, m); err != nil {
			return "", fmt.Errorf("recording mutation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing trip: %w", err)
	}

	if err := b.persistTripsJSONL(); err != nil {
		return "", err
	}
	if b.recordsMutations() {
		if err := b.persistOutboxJSONL(); err != nil {
			return "", err
		}
	}

	*trip = out
	return id, nil
}

// Delete removes a trip. Returns ErrNotFound if it does not exist.
func (tt *tripsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	b := tt.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDataStoreDetached
	}

	var exists bool
	err := b.db.QueryRow("SELECT 1 FROM trips WHERE trip_id = ?", id).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		return fmt.Errorf("checking trip existence: %w", err)
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM trips WHERE trip_id = ?", id); err != nil {
		return fmt.Errorf("deleting trip: %w", err)
	}

	if b.recordsMutations() {
		m := &types.Mutation{
			MutationID: newUUID(),
			Operation:  types.MutationDelete,
			TripID:     id,
			CreatedAt:  time.Now().UTC(),
		}
		if err := insertMutation(tx, m); err != nil {
			return fmt.Errorf("recording mutation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing trip deletion: %w", err)
	}

	if err := b.persistTripsJSONL(); err != nil {
		return err
	}
	if b.recordsMutations() {
		return b.persistOutboxJSONL()
	}
	return nil
}

// Fetch queries trips matching the filter, ordered by date then creation.
//
// Filter keys:
//   - "name", "location" (string): exact match
//   - "query" (string): case-insensitive substring of name, description or location
//   - "limit", "offset" (int)
func (tt *tripsTable) Fetch(filter types.Filter) ([]any, error) {
	b := tt.backend
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDataStoreDetached
	}

	query := "SELECT " + tripColumns + " FROM trips"
	var conditions []string
	var args []any

	for _, col := range []string{types.FieldName, types.FieldLocation} {
		v, ok := filter[col]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, col+" = ?")
		args = append(args, s)
	}

	if v, ok := filter[types.FilterQuery]; ok {
		q, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		if q != "" {
			like := "%" + strings.ToLower(q) + "%"
			conditions = append(conditions,
				"(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(location) LIKE ?)")
			args = append(args, like, like, like)
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, created_at ASC, trip_id ASC"

	limit, err := intFilter(filter, types.FilterLimit)
	if err != nil {
		return nil, err
	}
	offset, err := intFilter(filter, types.FilterOffset)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	} else if offset > 0 {
		query += " LIMIT -1"
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching trips: %w", err)
	}
	defer rows.Close()

	results := []any{}
	for rows.Next() {
		trip, err := hydrateTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating trip: %w", err)
		}
		results = append(results, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating trips: %w", err)
	}
	return results, nil
}

// intFilter reads an optional int filter value.
func intFilter(filter types.Filter, key string) (int, error) {
	v, ok := filter[key]
	if !ok {
		return 0, nil
	}
	n, ok := v.(int)
	if !ok {
		return 0, types.ErrInvalidFilter
	}
	return n, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// hydrateTrip converts a SQLite row into a *types.Trip.
func hydrateTrip(row scanner) (*types.Trip, error) {
	var t types.Trip
	var createdAt, updatedAt string
	if err := row.Scan(
		&t.TripID, &t.Name, &t.Description, &t.Location, &t.Date, &t.Image,
		&t.Title, &t.TooltipText, &t.Version, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// insertTrip inserts a trip row exactly as given.
func insertTrip(x execer, t *types.Trip) error {
	_, err := x.Exec(
		"INSERT INTO trips ("+tripColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.TripID, t.Name, t.Description, t.Location, t.Date, t.Image,
		t.Title, t.TooltipText, t.Version, formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	return err
}

// tripJSONLRecord matches the JSONL format for trips.
type tripJSONLRecord struct {
	TripID      string `json:"trip_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Image       string `json:"image"`
	Title       string `json:"title"`
	TooltipText string `json:"tooltip_text"`
	Version     int64  `json:"version"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// persistTripsJSONL writes all trips to trips.jsonl.
// The caller must hold b.mu.
func (b *Backend) persistTripsJSONL() error {
	if err := persistTrips(b.db, b.config.DataDir); err != nil {
		return fmt.Errorf("persisting %s: %w", tripsJSONL, err)
	}
	return nil
}

// persistTrips reads all trips from SQLite and writes them to trips.jsonl
// using the atomic write pattern.
func persistTrips(db *sql.DB, dataDir string) error {
	rows, err := db.Query("SELECT " + tripColumns + " FROM trips ORDER BY created_at ASC, trip_id ASC")
	if err != nil {
		return fmt.Errorf("querying trips for JSONL: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec tripJSONLRecord
		if err := rows.Scan(
			&rec.TripID, &rec.Name, &rec.Description, &rec.Location, &rec.Date, &rec.Image,
			&rec.Title, &rec.TooltipText, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return fmt.Errorf("scanning trip for JSONL: %w", err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshaling trip for JSONL: %w", err)
		}
		records = append(records, data)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating trips for JSONL: %w", err)
	}

	return writeJSONL(filepath.Join(dataDir, tripsJSONL), records)
}
