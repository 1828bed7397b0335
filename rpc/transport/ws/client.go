package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/ValentinKolb/qnclient/rpc/common"
	"github.com/ValentinKolb/qnclient/rpc/transport"
	"github.com/gorilla/websocket"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc/transport")

// closeGracePeriod bounds the write of the close frame
const closeGracePeriod = time.Second

// websocketTransport implements transport.IClientTransport with gorilla/websocket
type websocketTransport struct {
	dialer *websocket.Dialer
	config common.TransportConfig
}

// wsConn wraps a gorilla connection. Gorilla allows one concurrent writer and
// one concurrent reader, so writes (including the close frame) share writeMu.
type wsConn struct {
	conn      *websocket.Conn
	config    common.TransportConfig
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// --------------------------------------------------------------------------
// Transport Factory Method
// --------------------------------------------------------------------------

// NewWebsocketTransport creates a websocket client transport
func NewWebsocketTransport(config common.TransportConfig) transport.IClientTransport {
	return &websocketTransport{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeTimeout,
		},
		config: config,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientTransport)
// --------------------------------------------------------------------------

func (t *websocketTransport) GetName() string {
	return "websocket"
}

func (t *websocketTransport) Dial(ctx context.Context, endpoint string) (transport.IConn, error) {
	header := http.Header{}
	if t.config.Cookie != "" {
		header.Set("Cookie", t.config.Cookie)
	}

	conn, resp, err := t.dialer.DialContext(ctx, endpoint, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake with %s failed (%s): %w", endpoint, resp.Status, err)
		}
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	if t.config.ReadLimit > 0 {
		conn.SetReadLimit(t.config.ReadLimit)
	}

	Logger.Debugf("Websocket connected to %s", endpoint)
	return &wsConn{conn: conn, config: t.config}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IConn)
// --------------------------------------------------------------------------

func (c *wsConn) WriteMessage(kind common.MessageKind, data []byte) error {
	frameType, err := toFrameType(kind)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.config.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout)); err != nil {
			return err
		}
	}
	return c.conn.WriteMessage(frameType, data)
}

func (c *wsConn) ReadMessage() (common.MessageKind, []byte, error) {
	for {
		frameType, data, err := c.conn.ReadMessage()
		if err != nil {
			return 0, nil, err
		}
		switch frameType {
		case websocket.TextMessage:
			return common.MsgKindText, data, nil
		case websocket.BinaryMessage:
			return common.MsgKindBinary, data, nil
		}
		// control frames are handled inside gorilla, anything else is skipped
	}
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		// WriteControl may run concurrently with a stalled WriteMessage,
		// so Close does not wait for writeMu
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod)); err != nil {
			Logger.Debugf("Failed to send close frame: %v", err)
		}
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

func toFrameType(kind common.MessageKind) (int, error) {
	switch kind {
	case common.MsgKindText:
		return websocket.TextMessage, nil
	case common.MsgKindBinary:
		return websocket.BinaryMessage, nil
	default:
		return 0, fmt.Errorf("unsupported message kind %d", kind)
	}
}
