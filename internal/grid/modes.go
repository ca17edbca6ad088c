package grid

// Mode is a row's edit mode.
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "view"
}

// ModeEntry is a row's entry in the mode map.
type ModeEntry struct {
	Mode Mode

	// FieldToFocus names the field that takes input focus on entering Edit.
	FieldToFocus string

	// IgnoreModifications is set on cancel: the draft is discarded instead
	// of committed.
	IgnoreModifications bool
}

// StopReason says why an edit session was asked to stop.
type StopReason int

const (
	// StopRowFocusOut is ignored; the session outlives focus loss.
	StopRowFocusOut StopReason = iota
	StopEscapeKeyDown
	StopEnterKeyDown
)

func (r StopReason) String() string {
	switch r {
	case StopEscapeKeyDown:
		return "escape"
	case StopEnterKeyDown:
		return "enter"
	default:
		return "focus_out"
	}
}

// Action is a row-level affordance.
type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionSave   Action = "save"
	ActionCancel Action = "cancel"
)

// SyncStatus tells whether a row's local state is confirmed by the store.
type SyncStatus int

const (
	// Synced rows match what the store last acknowledged.
	Synced SyncStatus = iota
	// Pending rows have a local change the store has not acknowledged yet.
	Pending
	// Failed rows have a local change the store refused or could not apply.
	Failed
)

func (s SyncStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Failed:
		return "failed"
	default:
		return "synced"
	}
}
