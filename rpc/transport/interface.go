package transport

import (
	"context"

	"github.com/ValentinKolb/qnclient/rpc/common"
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IClientTransport is the interface for the client transport.
// A transport only knows how to open connections; the connection lifecycle
// (timeouts, reconnects, request correlation) is owned by the client.
type IClientTransport interface {
	// Dial opens a new connection to endpoint. Cancelling ctx aborts a dial in progress.
	Dial(ctx context.Context, endpoint string) (IConn, error)
	// GetName returns the name of the transport type (e.g. "websocket", "tcp")
	GetName() string
}

// IConn is a single bidirectional message connection
type IConn interface {
	// WriteMessage writes one complete frame. It must be safe to call
	// concurrently with ReadMessage and Close.
	WriteMessage(kind common.MessageKind, data []byte) error
	// ReadMessage blocks until the next frame arrives. It returns an error once the
	// connection is closed (by either side); after that the connection is unusable.
	ReadMessage() (kind common.MessageKind, data []byte, err error)
	// Close closes the connection and unblocks a WriteMessage or ReadMessage in
	// progress. It must not wait for a stalled write. Calling Close more than once is allowed.
	Close() error
}
