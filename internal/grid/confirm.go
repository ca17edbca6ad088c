package grid

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tripgrid/internal/logging"
)

// ConfirmState is the state of the delete confirmation.
type ConfirmState int

const (
	ConfirmClosed ConfirmState = iota
	ConfirmAwaiting
)

func (s ConfirmState) String() string {
	if s == ConfirmAwaiting {
		return "awaiting_confirmation"
	}
	return "closed"
}

// Confirmation is the delete confirmation dialog. Target is set only while
// awaiting.
type Confirmation struct {
	State  ConfirmState
	Target string
}

// Confirmation returns the current dialog state.
func (g *Grid) Confirmation() Confirmation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.confirm
}

// RequestDelete opens the confirmation for a row. The collection is not
// touched. A second request retargets the dialog.
func (g *Grid) RequestDelete(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.indexOf(id) < 0 {
		return ErrRowNotFound
	}
	g.confirm = Confirmation{State: ConfirmAwaiting, Target: id}
	logging.Debug("Delete requested", zap.String("row_id", id))
	return nil
}

// ConfirmDelete deletes the pending target from the store, then drops it
// from the collection and closes the dialog. The row is dropped even when
// the store call failed. With no target it does nothing. While a save of
// the target is in flight it returns ErrMutationInFlight and the dialog
// stays open. A dialog retargeted or cancelled during the store call is
// left as it is.
func (g *Grid) ConfirmDelete() error {
	g.mu.Lock()
	if g.confirm.State != ConfirmAwaiting {
		g.mu.Unlock()
		return nil
	}
	id := g.confirm.Target
	if err := g.acquire(id); err != nil {
		g.mu.Unlock()
		return err
	}
	g.mu.Unlock()

	g.RemoveRow(id)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.release(id)
	g.removeLocked(id)
	// A request or cancel made while the delete ran wins.
	if g.confirm.State == ConfirmAwaiting && g.confirm.Target == id {
		g.confirm = Confirmation{}
	}
	logging.Debug("Delete confirmed", zap.String("row_id", id))
	return nil
}

// CancelDelete closes the dialog without touching the collection.
func (g *Grid) CancelDelete() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirm = Confirmation{}
}
