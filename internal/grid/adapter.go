package grid

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tripgrid/internal/logging"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// Seed replaces the row collection with one row per trip. It does nothing
// and returns false when list has the revision already seeded. Mode entries
// of rows that survive are kept and those of dropped rows are removed; rows
// with a save in flight keep their status.
func (g *Grid) Seed(list TripList) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seeded && list.Revision == g.revision {
		return false
	}
	g.seedLocked(list)
	return true
}

func (g *Grid) seedLocked(list TripList) {
	rows := make([]Row, 0, len(list.Trips))
	status := make(map[string]SyncStatus, len(list.Trips))
	for _, t := range list.Trips {
		if t == nil {
			continue
		}
		r := RowFromTrip(t)
		rows = append(rows, r)
		if _, busy := g.inflight[r.ID]; busy {
			status[r.ID] = g.status[r.ID]
		} else {
			status[r.ID] = Synced
		}
	}
	for id, m := range g.modes {
		if _, kept := status[id]; kept {
			continue
		}
		if m.Mode == ModeEdit {
			logging.Debug("Reseed dropped row in edit", zap.String("row_id", id))
		}
		delete(g.modes, id)
		delete(g.drafts, id)
	}
	g.rows = rows
	g.status = status
	g.revision = list.Revision
	g.seeded = true
	logging.Debug("Seeded grid", zap.Int("rows", len(rows)), zap.Uint64("revision", list.Revision))
}

// CreateDraftRow appends an empty new row and puts it in Edit mode with the
// name field focused. It returns the row's id.
func (g *Grid) CreateDraftRow() string {
	id := newRowID()
	row := Row{ID: id, IsNew: true}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.rows = append(g.rows, row)
	g.modes[id] = ModeEntry{Mode: ModeEdit, FieldToFocus: types.FieldName}
	g.drafts[id] = row
	g.status[id] = Pending
	logging.LogRowTransition(id, "", ModeEdit.String(), "create")
	return id
}

// CommitRow persists a submitted row and returns it with IsNew cleared. A
// new row is created in the store under its own id. An existing row updates
// only name, description, location, date and image of the stored trip; when
// the trip is gone nothing is written. Store errors are logged, not
// returned, and the row replaces the old one by id either way. A row whose
// create failed stays new in the collection, so the next save creates it
// again. CommitRow releases the row's in-flight token.
func (g *Grid) CommitRow(row Row) Row {
	version, err := g.persist(row)

	stored := row
	stored.IsNew = row.IsNew && err != nil
	row.IsNew = false
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release(row.ID)
	if err == nil {
		row.Version = version
		stored.Version = version
	}
	i := g.indexOf(row.ID)
	if i < 0 {
		// Deleted or reseeded away while the save was in flight.
		return row
	}
	g.rows[i] = stored
	if err != nil {
		g.status[row.ID] = Failed
	} else {
		g.status[row.ID] = Synced
	}
	return row
}

// errTripGone marks an update whose backing trip no longer exists.
var errTripGone = errors.New("backing trip not found")

// persist writes a row to the store and returns the stored version.
func (g *Grid) persist(row Row) (int64, error) {
	if row.IsNew {
		trip := row.Trip()
		_, err := g.table.Set(row.ID, trip)
		logging.LogStoreCall("create", row.ID, err)
		return trip.Version, err
	}

	v, err := g.table.Get(row.ID)
	if errors.Is(err, types.ErrNotFound) {
		logging.Warn("Skipping save, trip no longer in store", zap.String("trip_id", row.ID))
		return 0, errTripGone
	}
	if err != nil {
		logging.LogStoreCall("get", row.ID, err)
		return 0, err
	}
	stored, ok := v.(*types.Trip)
	if !ok {
		return 0, types.ErrInvalidData
	}

	updated := stored.CopyOf(func(t *types.Trip) {
		row.applyDisplayFields(t)
		if g.concurrency == types.ConcurrencyVersioned {
			t.Version = row.Version
		}
	})
	_, err = g.table.Set(row.ID, updated)
	logging.LogStoreCall("update", row.ID, err)
	return updated.Version, err
}

// RemoveRow deletes the row's trip from the store if it is there. The
// collection is not touched; see ConfirmDelete.
func (g *Grid) RemoveRow(id string) {
	_, err := g.table.Get(id)
	if errors.Is(err, types.ErrNotFound) {
		logging.Debug("Trip already gone from store", zap.String("trip_id", id))
		return
	}
	if err != nil {
		logging.LogStoreCall("get", id, err)
		return
	}
	logging.LogStoreCall("delete", id, g.table.Delete(id))
}

// newRowID returns a UUID v7, falling back to v4.
func newRowID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
