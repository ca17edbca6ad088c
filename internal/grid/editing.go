package grid

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tripgrid/internal/logging"
)

// Edit moves a row from View to Edit and opens a draft holding its current
// values.
func (g *Grid) Edit(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexOf(id)
	if i < 0 {
		return ErrRowNotFound
	}
	if g.modes[id].Mode == ModeEdit {
		return ErrAlreadyEditing
	}
	g.modes[id] = ModeEntry{Mode: ModeEdit}
	g.drafts[id] = g.rows[i]
	logging.LogRowTransition(id, ModeView.String(), ModeEdit.String(), "edit")
	return nil
}

// SetField writes a value into the draft of a row in Edit mode.
func (g *Grid) SetField(id, field, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.indexOf(id) < 0 {
		return ErrRowNotFound
	}
	if g.modes[id].Mode != ModeEdit {
		return ErrNotEditing
	}
	d := g.drafts[id]
	if err := d.SetField(field, value); err != nil {
		return err
	}
	g.drafts[id] = d
	return nil
}

// BeginSave ends the edit session of a row optimistically: the row goes to
// View, the collection takes the draft values and the row is marked
// Pending. It returns the row to pass to CommitRow, which must follow.
// While a previous save or delete of the row is in flight it returns
// ErrMutationInFlight and leaves the row in Edit.
func (g *Grid) BeginSave(id string) (Row, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexOf(id)
	if i < 0 {
		return Row{}, ErrRowNotFound
	}
	if g.modes[id].Mode != ModeEdit {
		return Row{}, ErrNotEditing
	}
	if err := g.acquire(id); err != nil {
		return Row{}, err
	}

	row := g.drafts[id]
	row.ID = id
	row.IsNew = g.rows[i].IsNew
	row.Version = g.rows[i].Version
	g.rows[i] = row
	delete(g.drafts, id)
	g.modes[id] = ModeEntry{Mode: ModeView}
	g.status[id] = Pending
	logging.LogRowTransition(id, ModeEdit.String(), ModeView.String(), "save")
	return row, nil
}

// Save is BeginSave followed by CommitRow on the calling goroutine.
func (g *Grid) Save(id string) error {
	row, err := g.BeginSave(id)
	if err != nil {
		return err
	}
	g.CommitRow(row)
	return nil
}

// Cancel ends the edit session of a row and discards the draft. A new row
// that was never committed is removed from the collection.
func (g *Grid) Cancel(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexOf(id)
	if i < 0 {
		return ErrRowNotFound
	}
	if g.modes[id].Mode != ModeEdit {
		return ErrNotEditing
	}
	g.modes[id] = ModeEntry{Mode: ModeView, IgnoreModifications: true}
	delete(g.drafts, id)
	logging.LogRowTransition(id, ModeEdit.String(), ModeView.String(), "cancel")

	if g.rows[i].IsNew {
		g.removeLocked(id)
		logging.Debug("Discarded draft row", zap.String("row_id", id))
	}
	return nil
}

// StopEdit handles a request from the grid widget to end an edit session.
// Focus loss is ignored, Escape cancels and Enter saves.
func (g *Grid) StopEdit(id string, reason StopReason) error {
	switch reason {
	case StopEscapeKeyDown:
		return g.Cancel(id)
	case StopEnterKeyDown:
		return g.Save(id)
	default:
		logging.Debug("Ignoring stop request", zap.String("row_id", id), zap.Stringer("reason", reason))
		return nil
	}
}
