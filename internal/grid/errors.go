package grid

import "errors"

// Grid errors. Store failures are never returned; see SyncStatus.
var (
	ErrRowNotFound      = errors.New("row not found")
	ErrAlreadyEditing   = errors.New("row is already in edit mode")
	ErrNotEditing       = errors.New("row is not in edit mode")
	ErrUnknownField     = errors.New("unknown field")
	ErrMutationInFlight = errors.New("a save or delete for this row is still in flight")
	ErrEditInProgress   = errors.New("cannot reset while a row is being edited")
)
