// Package grid is the editable trip grid: an ordered row collection, a
// per-row View/Edit state machine, a two-step delete confirmation and a
// reset of the local store cache.
//
// Edits are optimistic. A save flips the row back to View and updates the
// collection before the store has answered; failures are logged, never
// returned, and recorded in the row's SyncStatus. Only one save or delete may
// be in flight per row.
//
// Grid talks to the store only through types.DataStore and types.Table.
// Its mutex guards local state and is never held across a store call, so the
// blocking half of a save (CommitRow) can run in a background goroutine.
package grid
