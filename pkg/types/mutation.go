package types

import (
	"errors"
	"time"
)

// Mutation operations recorded in the outbox.
const (
	MutationSave   = "save"
	MutationDelete = "delete"
)

// Mutation is a local write waiting to be replicated. Save mutations carry
// the full trip as written; delete mutations carry only the trip ID.
type Mutation struct {
	MutationID string    `json:"mutationId"`
	Operation  string    `json:"operation"`
	TripID     string    `json:"tripId"`
	Trip       *Trip     `json:"trip,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate checks that the mutation is well-formed.
func (m *Mutation) Validate() error {
	if m.TripID == "" {
		return ErrInvalidID
	}
	switch m.Operation {
	case MutationSave:
		if m.Trip == nil {
			return ErrInvalidData
		}
	case MutationDelete:
	default:
		return ErrInvalidOperation
	}
	return nil
}

// Entity method errors.
var (
	ErrInvalidField     = errors.New("invalid field")
	ErrInvalidOperation = errors.New("invalid mutation operation")
)
