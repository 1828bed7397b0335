package base

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/qnclient/rpc/common"
	"github.com/ValentinKolb/qnclient/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc/transport")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single stream connection to address
	Connect(ctx context.Context, address string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.TransportConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// framedConn carries length-prefixed frames over a stream connection
type framedConn struct {
	conn      net.Conn
	config    common.TransportConfig
	writeMu   sync.Mutex // Serializes frame writes
	closeOnce sync.Once
	closeErr  error
}

// framedTransport implements the stream transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type framedTransport struct {
	connector IClientConnector
	config    common.TransportConfig
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewFramedTransport creates a new stream transport with the specified connector
func NewFramedTransport(connector IClientConnector, config common.TransportConfig) transport.IClientTransport {
	return &framedTransport{
		connector: connector,
		config:    config,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientTransport)
// --------------------------------------------------------------------------

func (t *framedTransport) GetName() string {
	return t.connector.GetName()
}

func (t *framedTransport) Dial(ctx context.Context, endpoint string) (transport.IConn, error) {
	address := endpoint
	if scheme, rest, err := common.SplitEndpoint(endpoint); err == nil {
		if scheme != t.connector.GetName() {
			return nil, fmt.Errorf("%s transport cannot dial %q", t.connector.GetName(), endpoint)
		}
		address = rest
	}

	conn, err := t.connector.Connect(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	// Apply transport-specific optimizations
	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		Logger.Warningf("Failed to apply %s socket options: %v", t.connector.GetName(), err)
	}

	Logger.Debugf("Connected to %s via %s", address, t.connector.GetName())
	return &framedConn{conn: conn, config: t.config}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConn)
// --------------------------------------------------------------------------

func (c *framedConn) WriteMessage(kind common.MessageKind, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.config.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout)); err != nil {
			return err
		}
	}
	return writeFrame(c.conn, kind, data)
}

func (c *framedConn) ReadMessage() (common.MessageKind, []byte, error) {
	// only one reader (the client's read loop), no lock needed
	return readFrame(c.conn, c.config.ReadLimit)
}

func (c *framedConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
