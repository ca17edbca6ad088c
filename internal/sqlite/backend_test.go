// Tests for the SQLite backend lifecycle: attach, detach, clear and start.
package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// setupBackend creates an attached Backend in a temp directory and detaches
// it when the test ends.
func setupBackend(t *testing.T, opts ...Option) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := NewBackend(opts...)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { b.Detach() })
	return b, dir
}

// mustTrips returns the trips table or fails the test.
func mustTrips(t *testing.T, b *Backend) types.Table {
	t.Helper()
	tbl, err := b.GetTable(types.TripsTable)
	require.NoError(t, err)
	return tbl
}

// fakeReplicator records pushed mutations. With a fixed snapshot it returns
// that; otherwise it applies the mutations to its own remote state and
// returns all remote trips.
type fakeReplicator struct {
	pushed   [][]types.Mutation
	snapshot *types.Snapshot
	err      error
	remote   map[string]*types.Trip
}

func (f *fakeReplicator) Replicate(_ context.Context, pending []types.Mutation) (*types.Snapshot, error) {
	f.pushed = append(f.pushed, pending)
	if f.err != nil {
		return nil, f.err
	}
	if f.snapshot != nil {
		return f.snapshot, nil
	}
	if f.remote == nil {
		f.remote = make(map[string]*types.Trip)
	}
	for _, m := range pending {
		switch m.Operation {
		case types.MutationSave:
			trip := *m.Trip
			trip.Version++
			f.remote[m.TripID] = &trip
		case types.MutationDelete:
			delete(f.remote, m.TripID)
		}
	}
	snap := &types.Snapshot{}
	for _, trip := range f.remote {
		snap.Trips = append(snap.Trips, trip)
	}
	return snap, nil
}

func TestBackend_Attach(t *testing.T) {
	tmpDir := t.TempDir()

	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: tmpDir,
	}

	err := b.Attach(config)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	dbPath := filepath.Join(tmpDir, dbFileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("%s not created", dbFileName)
	}

	err = b.Attach(config)
	if err != types.ErrAlreadyAttached {
		t.Errorf("expected ErrAlreadyAttached, got %v", err)
	}

	b.Detach()
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend()
	err := b.Attach(types.Config{Backend: "postgres", DataDir: t.TempDir()})
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	_, err = b.GetTable(types.TripsTable)
	assert.ErrorIs(t, err, types.ErrDataStoreDetached)
}

func TestBackend_Detach(t *testing.T) {
	b, _ := setupBackend(t)
	tbl := mustTrips(t, b)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "Detach must be idempotent")

	_, err := b.GetTable(types.TripsTable)
	assert.ErrorIs(t, err, types.ErrDataStoreDetached)

	_, err = tbl.Get("t1")
	assert.ErrorIs(t, err, types.ErrDataStoreDetached)
	_, err = tbl.Set("", &types.Trip{Name: "x"})
	assert.ErrorIs(t, err, types.ErrDataStoreDetached)
	assert.ErrorIs(t, b.Clear(), types.ErrDataStoreDetached)
	assert.ErrorIs(t, b.Start(context.Background()), types.ErrDataStoreDetached)
}

func TestBackend_GetTableUnknown(t *testing.T) {
	b, _ := setupBackend(t)
	_, err := b.GetTable("itineraries")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

func TestBackend_ReattachReloadsJSONL(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(cfg))
	id, err := mustTrips(t, b).Set("", &types.Trip{Name: "Paris", Location: "France"})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(cfg))
	defer b2.Detach()

	got, err := mustTrips(t, b2).Get(id)
	require.NoError(t, err)
	trip := got.(*types.Trip)
	assert.Equal(t, "Paris", trip.Name)
	assert.Equal(t, "France", trip.Location)
	assert.Equal(t, int64(1), trip.Version)
}

func TestBackend_Clear(t *testing.T) {
	rep := &fakeReplicator{}
	b, dir := setupBackend(t, WithReplicator(rep))
	tbl := mustTrips(t, b)

	_, err := tbl.Set("", &types.Trip{Name: "Paris"})
	require.NoError(t, err)
	require.NoError(t, b.Start(context.Background()))
	require.True(t, b.Started())

	_, err = tbl.Set("", &types.Trip{Name: "Rome"})
	require.NoError(t, err)

	require.NoError(t, b.Clear())
	assert.False(t, b.Started())

	all, err := tbl.Fetch(nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	outbox, err := b.GetTable(types.OutboxTable)
	require.NoError(t, err)
	pending, err := outbox.Fetch(nil)
	require.NoError(t, err)
	assert.Empty(t, pending)

	for _, name := range jsonlFiles {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Zero(t, info.Size(), "%s should be empty after Clear", name)
	}
}

func TestBackend_StartWithoutReplicator(t *testing.T) {
	b, _ := setupBackend(t)
	assert.False(t, b.Started())
	require.NoError(t, b.Start(context.Background()))
	assert.True(t, b.Started())
}

func TestBackend_StartReplicates(t *testing.T) {
	remote := &types.Trip{TripID: "r1", Name: "Remote", Version: 7}
	rep := &fakeReplicator{snapshot: &types.Snapshot{
		Trips:    []*types.Trip{remote},
		Rejected: []types.Rejection{{MutationID: "m-x", Reason: "conflict"}},
	}}
	b, _ := setupBackend(t, WithReplicator(rep))
	tbl := mustTrips(t, b)

	localID, err := tbl.Set("", &types.Trip{Name: "Local"})
	require.NoError(t, err)
	require.NoError(t, tbl.Delete(localID))

	require.NoError(t, b.Start(context.Background()))

	require.Len(t, rep.pushed, 1)
	pushed := rep.pushed[0]
	require.Len(t, pushed, 2)
	assert.Equal(t, types.MutationSave, pushed[0].Operation)
	assert.Equal(t, localID, pushed[0].TripID)
	assert.Equal(t, int64(0), pushed[0].Trip.Version, "create is based on no prior version")
	assert.Equal(t, types.MutationDelete, pushed[1].Operation)

	all, err := tbl.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	got := all[0].(*types.Trip)
	assert.Equal(t, "r1", got.TripID)
	assert.Equal(t, int64(7), got.Version)

	outbox, err := b.GetTable(types.OutboxTable)
	require.NoError(t, err)
	pending, err := outbox.Fetch(nil)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestBackend_StartFailureKeepsOutbox(t *testing.T) {
	rep := &fakeReplicator{err: errors.New("connection refused")}
	b, _ := setupBackend(t, WithReplicator(rep))
	tbl := mustTrips(t, b)

	id, err := tbl.Set("", &types.Trip{Name: "Offline"})
	require.NoError(t, err)

	err = b.Start(context.Background())
	require.Error(t, err)
	assert.False(t, b.Started())

	_, err = tbl.Get(id)
	assert.NoError(t, err, "local trip survives a failed replication")

	outbox, err := b.GetTable(types.OutboxTable)
	require.NoError(t, err)
	pending, err := outbox.Fetch(types.Filter{"trip_id": id})
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestBackend_SeedCatalog(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir, SeedCatalog: true}

	b := NewBackend()
	require.NoError(t, b.Attach(cfg))
	all, err := mustTrips(t, b).Fetch(nil)
	require.NoError(t, err)
	seeded := len(all)
	assert.NotZero(t, seeded)
	require.NoError(t, b.Detach())

	// Seeding only runs against an empty store.
	b2 := NewBackend()
	require.NoError(t, b2.Attach(cfg))
	defer b2.Detach()
	all, err = mustTrips(t, b2).Fetch(nil)
	require.NoError(t, err)
	assert.Len(t, all, seeded)
}
