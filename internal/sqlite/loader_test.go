// Unit tests for JSONL loading with forward compatibility.
package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// attachWith writes the given JSONL files into a temp dir and attaches a
// backend to it.
func attachWith(t *testing.T, files map[string]string) *Backend {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestLoadJSONLUnknownFields(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		jsonl    string
		countSQL string
		wantRows int
		checkSQL string
		checkVal string
	}{
		{
			name:     "trips with unknown fields load successfully",
			file:     tripsJSONL,
			jsonl:    `{"trip_id":"t-001","name":"Paris","location":"France","version":3,"created_at":"2025-01-15T10:30:00Z","updated_at":"2025-01-15T10:30:00Z","rating":5,"tags":["food"]}` + "\n",
			countSQL: "SELECT COUNT(*) FROM trips",
			wantRows: 1,
			checkSQL: "SELECT name FROM trips WHERE trip_id = 't-001'",
			checkVal: "Paris",
		},
		{
			name:     "outbox with unknown fields load successfully",
			file:     outboxJSONL,
			jsonl:    `{"mutation_id":"m-001","operation":"save","trip_id":"t-001","payload":{"id":"t-001","name":"Paris"},"created_at":"2025-01-15T10:30:00Z","attempts":2}` + "\n",
			countSQL: "SELECT COUNT(*) FROM outbox",
			wantRows: 1,
			checkSQL: "SELECT operation FROM outbox WHERE mutation_id = 'm-001'",
			checkVal: "save",
		},
		{
			name:     "records without a primary key are skipped",
			file:     tripsJSONL,
			jsonl:    `{"name":"orphan"}` + "\n" + `{"trip_id":"t-002","name":"Kyoto"}` + "\n",
			countSQL: "SELECT COUNT(*) FROM trips",
			wantRows: 1,
			checkSQL: "SELECT name FROM trips WHERE trip_id = 't-002'",
			checkVal: "Kyoto",
		},
		{
			name:     "duplicate primary keys keep the first record",
			file:     tripsJSONL,
			jsonl:    `{"trip_id":"t-003","name":"First"}` + "\n" + `{"trip_id":"t-003","name":"Second"}` + "\n",
			countSQL: "SELECT COUNT(*) FROM trips",
			wantRows: 1,
			checkSQL: "SELECT name FROM trips WHERE trip_id = 't-003'",
			checkVal: "First",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := attachWith(t, map[string]string{tt.file: tt.jsonl})

			var count int
			require.NoError(t, b.db.QueryRow(tt.countSQL).Scan(&count))
			assert.Equal(t, tt.wantRows, count)

			var val string
			require.NoError(t, b.db.QueryRow(tt.checkSQL).Scan(&val))
			assert.Equal(t, tt.checkVal, val)
		})
	}
}

func TestLoadJSONLMissingColumnsUseDefaults(t *testing.T) {
	b := attachWith(t, map[string]string{
		tripsJSONL: `{"trip_id":"t-010","name":"Banff"}` + "\n",
	})

	got, err := mustTrips(t, b).Get("t-010")
	require.NoError(t, err)
	trip := got.(*types.Trip)
	assert.Equal(t, "Banff", trip.Name)
	assert.Equal(t, "", trip.Location)
	assert.Equal(t, int64(1), trip.Version)
	assert.True(t, trip.CreatedAt.IsZero())
}

func TestLoadJSONLOutboxPayloadRoundTrips(t *testing.T) {
	b := attachWith(t, map[string]string{
		outboxJSONL: `{"mutation_id":"m-1","operation":"save","trip_id":"t-1","payload":{"id":"t-1","name":"Lisbon","_version":4},"created_at":"2025-01-15T10:30:00Z"}` + "\n" +
			`{"mutation_id":"m-2","operation":"delete","trip_id":"t-2","created_at":"2025-01-15T10:31:00Z"}` + "\n",
	})

	outbox, err := b.GetTable(types.OutboxTable)
	require.NoError(t, err)
	pending, err := outbox.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	save := pending[0].(*types.Mutation)
	require.NotNil(t, save.Trip)
	assert.Equal(t, "Lisbon", save.Trip.Name)
	assert.Equal(t, int64(4), save.Trip.Version)

	del := pending[1].(*types.Mutation)
	assert.Equal(t, types.MutationDelete, del.Operation)
	assert.Nil(t, del.Trip)
}
