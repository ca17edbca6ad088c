package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tripgrid/internal/logging"
	"github.com/mesh-intelligence/tripgrid/pkg/types"
)

const (
	// Time allowed for the WebSocket handshake.
	handshakeTimeout = 10 * time.Second

	// Time allowed to write the request.
	writeWait = 10 * time.Second

	// Time allowed to wait for the snapshot.
	readWait = 30 * time.Second
)

var _ types.Replicator = (*Client)(nil)

// Client is a Replicator that talks to a tripgrid sync server.
type Client struct {
	url    string
	dialer *websocket.Dialer
}

// NewClient returns a client for the sync endpoint at url
// (for example ws://localhost:8420/sync).
func NewClient(url string) *Client {
	return &Client{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

// URL returns the endpoint the client dials.
func (c *Client) URL() string {
	return c.url
}

// Replicate pushes pending mutations and returns the server's snapshot.
// Cancelling ctx aborts the exchange.
func (c *Client) Replicate(ctx context.Context, pending []types.Mutation) (*types.Snapshot, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", c.url, err)
	}
	defer func() { _ = conn.Close() }()

	// Closing the connection unblocks a pending read or write.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	logging.Debug("Replicating with sync server",
		zap.String("remote", c.url),
		zap.Int("pending", len(pending)),
	)

	if err := conn.SetWriteDeadline(deadline(ctx, writeWait)); err != nil {
		return nil, fmt.Errorf("setting write deadline: %w", err)
	}
	if err := conn.WriteJSON(NewReplicateRequest(pending)); err != nil {
		return nil, ctxErr(ctx, fmt.Errorf("sending replicate request: %w", err))
	}

	if err := conn.SetReadDeadline(deadline(ctx, readWait)); err != nil {
		return nil, fmt.Errorf("setting read deadline: %w", err)
	}
	var resp Response
	if err := conn.ReadJSON(&resp); err != nil {
		return nil, ctxErr(ctx, fmt.Errorf("reading snapshot: %w", err))
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))

	return resp.Snapshot()
}

// deadline returns the earlier of ctx's deadline and now+d.
func deadline(ctx context.Context, d time.Duration) time.Time {
	t := time.Now().Add(d)
	if dl, ok := ctx.Deadline(); ok && dl.Before(t) {
		return dl
	}
	return t
}

// ctxErr prefers the context error when the context ended the exchange.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}
