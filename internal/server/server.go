// Package server implements the tripgrid sync server: a WebSocket endpoint
// that applies replicated mutations to its own trip store and answers with
// the authoritative trip list.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tripgrid/internal/logging"
	"github.com/mesh-intelligence/tripgrid/internal/syncer"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the replicate request
	readWait = 30 * time.Second

	// Maximum request size allowed from peer
	maxMessageSize = 8 << 20

	// Time allowed for in-flight exchanges on shutdown
	shutdownTimeout = 5 * time.Second
)

// Server applies replication rounds against a trip store.
type Server struct {
	store    types.DataStore
	upgrader websocket.Upgrader

	// mu serializes rounds so each snapshot reflects a whole round.
	mu sync.Mutex
}

// New returns a server backed by store. The store must already be attached.
func New(store types.DataStore) *Server {
	return &Server{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the HTTP handler serving the sync endpoint and a health
// check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(syncer.DefaultPath, s)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// ServeHTTP upgrades the connection and handles one replicate exchange.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(readWait)); err != nil {
		return
	}

	var req syncer.Request
	if err := conn.ReadJSON(&req); err != nil {
		logging.Info("Connection closed or error reading request",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		return
	}

	var resp syncer.Response
	if req.Type != syncer.TypeReplicate {
		logging.Warn("Received message with unknown type",
			zap.String("remote_addr", remoteAddr),
			zap.String("type", req.Type),
		)
		resp = syncer.NewErrorResponse(fmt.Errorf("%w: %q", syncer.ErrUnexpectedMessage, req.Type))
	} else if snapshot, err := s.Apply(req.Mutations); err != nil {
		logging.Error("Replication round failed",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		resp = syncer.NewErrorResponse(err)
	} else {
		logging.LogSync(remoteAddr, len(req.Mutations), len(snapshot.Trips), len(snapshot.Rejected))
		resp = syncer.NewSnapshotResponse(snapshot)
	}

	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}
	if err := conn.WriteJSON(resp); err != nil {
		logging.Error("Failed to send response",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
	}
}

// Apply runs one replication round: mutations are applied in order and the
// full trip list is returned. A mutation the store refuses is reported in
// the snapshot's Rejected list and does not stop the round.
func (s *Server) Apply(pending []types.Mutation) (*types.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tbl, err := s.store.GetTable(types.TripsTable)
	if err != nil {
		return nil, err
	}

	snapshot := &types.Snapshot{Trips: []*types.Trip{}}
	for i := range pending {
		m := &pending[i]
		if err := applyMutation(tbl, m); err != nil {
			logging.Warn("Rejecting mutation",
				zap.String("mutation_id", m.MutationID),
				zap.String("trip_id", m.TripID),
				zap.Error(err),
			)
			snapshot.Rejected = append(snapshot.Rejected, types.Rejection{
				MutationID: m.MutationID,
				Reason:     err.Error(),
			})
		}
	}

	all, err := tbl.Fetch(nil)
	if err != nil {
		return nil, fmt.Errorf("fetching trips: %w", err)
	}
	for _, v := range all {
		snapshot.Trips = append(snapshot.Trips, v.(*types.Trip))
	}
	return snapshot, nil
}

// applyMutation writes one mutation. Deleting a trip the server no longer
// has is not an error.
func applyMutation(tbl types.Table, m *types.Mutation) error {
	if err := m.Validate(); err != nil {
		return err
	}
	switch m.Operation {
	case types.MutationSave:
		trip := *m.Trip
		_, err := tbl.Set(m.TripID, &trip)
		logging.LogStoreCall("save", m.TripID, err)
		return err
	case types.MutationDelete:
		err := tbl.Delete(m.TripID)
		logging.LogStoreCall("delete", m.TripID, err)
		if errors.Is(err, types.ErrNotFound) {
			return nil
		}
		return err
	}
	return types.ErrInvalidOperation
}

// ListenAndServe serves s on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, s *Server) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Sync server listening", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logging.Info("Sync server shutting down")
		return httpServer.Shutdown(shutdownCtx)
	}
}
