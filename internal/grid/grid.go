package grid

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// Grid owns the row collection and the mode map for one editor.
type Grid struct {
	store  types.DataStore
	table  types.Table
	source Source

	concurrency string
	resetPolicy string

	mu       sync.Mutex
	rows     []Row
	modes    map[string]ModeEntry
	drafts   map[string]Row
	status   map[string]SyncStatus
	inflight map[string]struct{}
	confirm  Confirmation
	revision uint64
	seeded   bool
}

// Option configures a Grid.
type Option func(*Grid)

// WithSource replaces the default StoreSource over the trips table.
func WithSource(s Source) Option {
	return func(g *Grid) {
		g.source = s
	}
}

// New builds an empty grid over an attached store. The concurrency and reset
// policies come from cfg. Call Refresh or Seed to load rows.
func New(store types.DataStore, cfg types.Config, opts ...Option) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table, err := store.GetTable(types.TripsTable)
	if err != nil {
		return nil, fmt.Errorf("opening trips table: %w", err)
	}
	g := &Grid{
		store:       store,
		table:       table,
		concurrency: cfg.GetConcurrency(),
		resetPolicy: cfg.GetResetPolicy(),
		modes:       make(map[string]ModeEntry),
		drafts:      make(map[string]Row),
		status:      make(map[string]SyncStatus),
		inflight:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.source == nil {
		g.source = StoreSource{Table: table}
	}
	return g, nil
}

// Refresh reads the source and seeds the grid when the list changed.
func (g *Grid) Refresh() (bool, error) {
	list, err := g.source.Trips()
	if err != nil {
		return false, err
	}
	return g.Seed(list), nil
}

// Rows returns a copy of the row collection in order.
func (g *Grid) Rows() []Row {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Row, len(g.rows))
	copy(out, g.rows)
	return out
}

// Row returns the row with the given id.
func (g *Grid) Row(id string) (Row, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexOf(id)
	if i < 0 {
		return Row{}, false
	}
	return g.rows[i], true
}

// Len returns the number of rows.
func (g *Grid) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rows)
}

// Mode returns the mode entry of a row. Rows never edited are in View.
func (g *Grid) Mode(id string) ModeEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.modes[id]
}

// Draft returns the edit buffer of a row in Edit mode.
func (g *Grid) Draft(id string) (Row, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.modes[id].Mode != ModeEdit {
		return Row{}, false
	}
	d, ok := g.drafts[id]
	return d, ok
}

// Status returns the sync status of a row.
func (g *Grid) Status(id string) (SyncStatus, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.indexOf(id) < 0 {
		return Synced, false
	}
	return g.status[id], true
}

// InFlight reports whether a save or delete for the row is outstanding.
func (g *Grid) InFlight(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inflight[id]
	return ok
}

// Actions returns the affordances of a row: Edit and Delete in View, Save
// and Cancel in Edit. Ids not in the collection have none.
func (g *Grid) Actions(id string) []Action {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.indexOf(id) < 0 {
		return nil
	}
	if g.modes[id].Mode == ModeEdit {
		return []Action{ActionSave, ActionCancel}
	}
	return []Action{ActionEdit, ActionDelete}
}

// Editing reports whether any row in the collection is in Edit mode.
func (g *Grid) Editing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.editingLocked()
}

func (g *Grid) editingLocked() bool {
	for _, r := range g.rows {
		if g.modes[r.ID].Mode == ModeEdit {
			return true
		}
	}
	return false
}

// indexOf returns the position of id in the collection or -1.
// The caller must hold g.mu.
func (g *Grid) indexOf(id string) int {
	for i := range g.rows {
		if g.rows[i].ID == id {
			return i
		}
	}
	return -1
}

// removeLocked drops a row and its bookkeeping.
func (g *Grid) removeLocked(id string) {
	i := g.indexOf(id)
	if i < 0 {
		return
	}
	g.rows = append(g.rows[:i], g.rows[i+1:]...)
	delete(g.modes, id)
	delete(g.drafts, id)
	delete(g.status, id)
}

// acquire takes the in-flight token for id.
func (g *Grid) acquire(id string) error {
	if _, busy := g.inflight[id]; busy {
		return ErrMutationInFlight
	}
	g.inflight[id] = struct{}{}
	return nil
}

func (g *Grid) release(id string) {
	delete(g.inflight, id)
}
