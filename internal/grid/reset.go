package grid

import (
	"context"

	"github.com/mesh-intelligence/tripgrid/internal/logging"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// Reset clears the store's local cache, restarts its synchronization and
// reseeds the rows from the source. Store failures are logged and
// swallowed.
//
// Under the guard policy Reset refuses with ErrEditInProgress while any row
// is in Edit and changes nothing. Under the discard policy open edit
// sessions are dropped.
func (g *Grid) Reset(ctx context.Context) error {
	g.mu.Lock()
	if g.editingLocked() {
		if g.resetPolicy == types.ResetGuard {
			g.mu.Unlock()
			return ErrEditInProgress
		}
		for id, m := range g.modes {
			if m.Mode == ModeEdit {
				logging.LogRowTransition(id, ModeEdit.String(), ModeView.String(), "reset")
			}
		}
	}
	g.modes = make(map[string]ModeEntry)
	g.drafts = make(map[string]Row)
	g.confirm = Confirmation{}
	g.mu.Unlock()

	logging.LogStoreCall("clear", "", g.store.Clear())
	logging.LogStoreCall("start", "", g.store.Start(ctx))

	list, err := g.source.Trips()
	if err != nil {
		logging.LogStoreCall("query", "", err)
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.seedLocked(list)
	return nil
}
