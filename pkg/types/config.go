package types

import "errors"

// Config holds backend selection and parameters for DataStore.Attach.
type Config struct {
	Backend     string `json:"backend" yaml:"backend"`
	DataDir     string `json:"data_dir" yaml:"data_dir"`
	SyncURL     string `json:"sync_url,omitempty" yaml:"sync_url,omitempty"`
	Concurrency string `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	ResetPolicy string `json:"reset_policy,omitempty" yaml:"reset_policy,omitempty"`
	SeedCatalog bool   `json:"seed_catalog,omitempty" yaml:"seed_catalog,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Concurrency policies for trip updates.
//
// ConcurrencyLastWriteWins ignores the caller's version token: every update
// is applied on top of whatever the store holds. ConcurrencyVersioned rejects
// an update whose version differs from the stored one with
// ErrVersionConflict.
const (
	ConcurrencyLastWriteWins = "last_write_wins"
	ConcurrencyVersioned     = "versioned"
)

// Reset policies for the grid reset flow.
//
// ResetGuard refuses to reset while any row is being edited. ResetDiscard
// resets anyway and drops the edit sessions.
const (
	ResetGuard   = "guard"
	ResetDiscard = "discard"
)

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrConcurrencyUnknown = errors.New("unknown concurrency policy")
	ErrResetPolicyUnknown = errors.New("unknown reset policy")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure. Empty policies are valid and resolve to their
// defaults.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	switch c.Concurrency {
	case "", ConcurrencyLastWriteWins, ConcurrencyVersioned:
	default:
		return ErrConcurrencyUnknown
	}
	switch c.ResetPolicy {
	case "", ResetGuard, ResetDiscard:
	default:
		return ErrResetPolicyUnknown
	}
	return nil
}

// GetConcurrency returns the effective concurrency policy.
func (c Config) GetConcurrency() string {
	if c.Concurrency == "" {
		return ConcurrencyLastWriteWins
	}
	return c.Concurrency
}

// GetResetPolicy returns the effective reset policy.
func (c Config) GetResetPolicy() string {
	if c.ResetPolicy == "" {
		return ResetGuard
	}
	return c.ResetPolicy
}
