package grid

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// fakeTable is an in-memory trips table that counts calls and can be told to
// fail.
type fakeTable struct {
	mu     sync.Mutex
	trips  map[string]*types.Trip
	order  []string
	strict bool // reject stale versions

	creates []*types.Trip
	updates []*types.Trip
	deletes []string
	gets    []string

	setErr    error
	deleteErr error
	getErr    error

	// block, when set, is received from before Set returns.
	block chan struct{}
	// deleteBlock, when set, is received from before Delete returns.
	deleteBlock chan struct{}
}

func newFakeTable(trips ...*types.Trip) *fakeTable {
	ft := &fakeTable{trips: make(map[string]*types.Trip)}
	for _, t := range trips {
		cp := *t
		if cp.Version == 0 {
			cp.Version = 1
		}
		ft.trips[cp.TripID] = &cp
		ft.order = append(ft.order, cp.TripID)
	}
	return ft
}

func (ft *fakeTable) Get(id string) (any, error) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.gets = append(ft.gets, id)
	if ft.getErr != nil {
		return nil, ft.getErr
	}
	t, ok := ft.trips[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (ft *fakeTable) Set(id string, data any) (string, error) {
	if ft.block != nil {
		<-ft.block
	}
	ft.mu.Lock()
	defer ft.mu.Unlock()
	trip := data.(*types.Trip)
	cp := *trip
	stored, exists := ft.trips[id]
	if exists {
		ft.updates = append(ft.updates, &cp)
	} else {
		ft.creates = append(ft.creates, &cp)
	}
	if ft.setErr != nil {
		return "", ft.setErr
	}
	if exists && ft.strict && trip.Version != stored.Version {
		return "", types.ErrVersionConflict
	}
	cp.TripID = id
	if exists {
		cp.Version = stored.Version + 1
	} else {
		cp.Version = 1
		ft.order = append(ft.order, id)
	}
	ft.trips[id] = &cp
	*trip = cp
	return id, nil
}

func (ft *fakeTable) Delete(id string) error {
	if ft.deleteBlock != nil {
		<-ft.deleteBlock
	}
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.deletes = append(ft.deletes, id)
	if ft.deleteErr != nil {
		return ft.deleteErr
	}
	if _, ok := ft.trips[id]; !ok {
		return types.ErrNotFound
	}
	delete(ft.trips, id)
	for i, o := range ft.order {
		if o == id {
			ft.order = append(ft.order[:i], ft.order[i+1:]...)
			break
		}
	}
	return nil
}

func (ft *fakeTable) Fetch(types.Filter) ([]any, error) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	out := make([]any, 0, len(ft.order))
	for _, id := range ft.order {
		cp := *ft.trips[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (ft *fakeTable) counts() (creates, updates, deletes int) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.creates), len(ft.updates), len(ft.deletes)
}

// fakeStore is a DataStore around a fakeTable. Clear empties the table and
// Start loads remote, as a replicator would.
type fakeStore struct {
	table    *fakeTable
	remote   []*types.Trip
	clears   int
	starts   int
	clearErr error
	startErr error
}

func (fs *fakeStore) GetTable(name string) (types.Table, error) {
	if name != types.TripsTable {
		return nil, types.ErrTableNotFound
	}
	return fs.table, nil
}

func (fs *fakeStore) Attach(types.Config) error { return nil }
func (fs *fakeStore) Detach() error             { return nil }

func (fs *fakeStore) Clear() error {
	fs.clears++
	if fs.clearErr != nil {
		return fs.clearErr
	}
	fs.table.mu.Lock()
	defer fs.table.mu.Unlock()
	fs.table.trips = make(map[string]*types.Trip)
	fs.table.order = nil
	return nil
}

func (fs *fakeStore) Start(context.Context) error {
	fs.starts++
	if fs.startErr != nil {
		return fs.startErr
	}
	fs.table.mu.Lock()
	defer fs.table.mu.Unlock()
	for _, t := range fs.remote {
		cp := *t
		fs.table.trips[cp.TripID] = &cp
		fs.table.order = append(fs.table.order, cp.TripID)
	}
	return nil
}

var errBackend = errors.New("backend unavailable")

func rowIDs(rows []Row) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func sortedIDs(m map[string]*types.Trip) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
