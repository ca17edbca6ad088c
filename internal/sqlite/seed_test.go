// Unit tests for catalog seeding on backend attach.
package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tripgrid/internal/catalog"
)

// setupTestDB creates a temporary directory with empty JSONL files, opens a
// SQLite database in it and initializes the schema.
func setupTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()

	dataDir := t.TempDir()

	for _, name := range jsonlFiles {
		f, err := os.Create(filepath.Join(dataDir, name))
		require.NoError(t, err)
		f.Close()
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, ddl := range schemaDDL {
		_, err := db.Exec(ddl)
		require.NoError(t, err)
	}
	for _, ddl := range indexDDL {
		_, err := db.Exec(ddl)
		require.NoError(t, err)
	}
	return db, dataDir
}

func TestSeedCatalog(t *testing.T) {
	db, dataDir := setupTestDB(t)

	want, err := catalog.Load()
	require.NoError(t, err)

	require.NoError(t, seedCatalog(db, dataDir))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM trips").Scan(&count))
	assert.Equal(t, len(want), count)

	var version int64
	require.NoError(t, db.QueryRow(
		"SELECT version FROM trips WHERE trip_id = ?", want[0].TripID,
	).Scan(&version))
	assert.Equal(t, int64(1), version)

	records, err := readJSONL(filepath.Join(dataDir, tripsJSONL))
	require.NoError(t, err)
	assert.Len(t, records, len(want))

	var outbox int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM outbox").Scan(&outbox))
	assert.Zero(t, outbox, "seeded trips are not queued")
}

func TestSeedCatalogIdempotent(t *testing.T) {
	db, dataDir := setupTestDB(t)

	require.NoError(t, seedCatalog(db, dataDir))
	require.NoError(t, seedCatalog(db, dataDir))

	want, err := catalog.Load()
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM trips").Scan(&count))
	assert.Equal(t, len(want), count)
}

func TestSeedCatalogSkipsNonEmptyStore(t *testing.T) {
	db, dataDir := setupTestDB(t)

	_, err := db.Exec(
		"INSERT INTO trips (trip_id, name, version, created_at, updated_at) VALUES ('mine', 'Mine', 1, '', '')",
	)
	require.NoError(t, err)

	require.NoError(t, seedCatalog(db, dataDir))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM trips").Scan(&count))
	assert.Equal(t, 1, count)
}
