// Package syncer replicates a local trip store with a sync server over a
// WebSocket. One connection carries exactly one exchange: the client sends a
// replicate request holding its pending mutations, the server answers with
// the authoritative trip snapshot or an error.
package syncer

import (
	"errors"

	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

// Message types.
const (
	TypeReplicate = "replicate"
	TypeSnapshot  = "snapshot"
	TypeError     = "error"
)

// DefaultPath is the HTTP path the sync server upgrades on.
const DefaultPath = "/sync"

// Request is sent by the client.
type Request struct {
	Type      string           `json:"type"`
	Mutations []types.Mutation `json:"mutations"`
}

// Response is sent by the server.
type Response struct {
	Type     string            `json:"type"`
	Trips    []*types.Trip     `json:"trips,omitempty"`
	Rejected []types.Rejection `json:"rejected,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// NewReplicateRequest wraps pending mutations in a replicate request. A nil
// slice is sent as an empty array.
func NewReplicateRequest(pending []types.Mutation) Request {
	if pending == nil {
		pending = []types.Mutation{}
	}
	return Request{Type: TypeReplicate, Mutations: pending}
}

// NewSnapshotResponse builds the success response for a snapshot.
func NewSnapshotResponse(s *types.Snapshot) Response {
	return Response{Type: TypeSnapshot, Trips: s.Trips, Rejected: s.Rejected}
}

// NewErrorResponse builds the failure response.
func NewErrorResponse(err error) Response {
	return Response{Type: TypeError, Error: err.Error()}
}

// Snapshot converts a response into a snapshot. Error responses become
// ErrRemote; anything else that is not a snapshot becomes
// ErrUnexpectedMessage.
func (r Response) Snapshot() (*types.Snapshot, error) {
	switch r.Type {
	case TypeSnapshot:
		return &types.Snapshot{Trips: r.Trips, Rejected: r.Rejected}, nil
	case TypeError:
		return nil, &RemoteError{Message: r.Error}
	default:
		return nil, ErrUnexpectedMessage
	}
}

// Protocol errors.
var (
	ErrRemote            = errors.New("sync server error")
	ErrUnexpectedMessage = errors.New("unexpected sync message")
)

// RemoteError carries the message of an error response. It matches
// ErrRemote with errors.Is.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return ErrRemote.Error() + ": " + e.Message
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}
