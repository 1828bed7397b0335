package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/ValentinKolb/qnclient/rpc/common"
	"github.com/ValentinKolb/qnclient/rpc/serializer"
	"github.com/ValentinKolb/qnclient/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc/client")

// PingCmd is the command sent by the liveness prober. The notes server does not
// answer it, so each ping stays pending (and counts in requests_pending) until the
// connection closes and it is failed with the other pending requests.
const PingCmd = "ping"

// ConnectionState is the state of the connection manager
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateOpen
	StateClosed // terminal, after Close
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option configures optional parts of a Client
type Option func(*Client)

// WithClock replaces the clock used for all timers
func WithClock(clock Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// attempt is one connection attempt, from Open until its close.
// Every timer and goroutine belonging to an attempt checks that it is still
// the current one before touching client state.
type attempt struct {
	cancel context.CancelFunc
	conn   transport.IConn
	writer *writer // set once open
}

// Client is a persistent multiplexed request/response client.
// All requests share one connection; responses are matched to their callbacks
// by correlation id. The connection is opened lazily with Open and re-opened
// automatically after it is lost.
type Client struct {
	config     common.ClientConfig
	transport  transport.IClientTransport
	serializer serializer.IRPCSerializer
	clock      Clock
	metrics    *clientMetrics

	registry   *registry
	broadcasts *xsync.MapOf[string, *broadcastHandler]
	notifier   *statusNotifier

	// mu guards everything below. State transitions, buffering decisions and
	// queuing frames for the writer all happen while holding it.
	mu             sync.Mutex
	state          ConnectionState
	lastID         uint64
	buffer         outboundBuffer
	policy         *ReconnectPolicy
	current        *attempt
	connectTimer   Timer
	probeTimer     Timer
	reconnectTimer Timer
	reconnectGen   uint64
}

// --------------------------------------------------------------------------
// Client Factory Method
// --------------------------------------------------------------------------

// New creates a client for config. The connection is not opened before Open is called;
// requests sent before that are buffered.
func New(
	config common.ClientConfig,
	transport transport.IClientTransport,
	serializer serializer.IRPCSerializer,
	opts ...Option,
) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	if transport == nil || serializer == nil {
		return nil, fmt.Errorf("transport and serializer are required")
	}

	c := &Client{
		config:     config,
		transport:  transport,
		serializer: serializer,
		clock:      realClock{},
		registry:   newRegistry(),
		broadcasts: xsync.NewMapOf[string, *broadcastHandler](),
		notifier:   newStatusNotifier(),
		state:      StateDisconnected,
		policy:     NewReconnectPolicy(config.Reconnect),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.metrics = newClientMetrics(c)
	return c, nil
}

// --------------------------------------------------------------------------
// Public Methods
// --------------------------------------------------------------------------

// Open starts connecting. It is a no-op while connecting, open or closed.
func (c *Client) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openLocked()
}

// Reconnect is the manual reconnect trigger offered once automatic retries gave up.
// It behaves like Open.
func (c *Client) Reconnect() {
	Logger.Infof("Manual reconnect to %s", c.config.Endpoint)
	c.Open()
}

// Send issues cmd with args. Send never blocks on the network. The outcome is always delivered through cb, never
// synchronously from within Send: a result, a *common.RemoteError, an error wrapping
// common.ErrConnectionLost if the connection closes first, or common.ErrClientClosed.
// transform (optional) converts the raw result before cb sees it.
func (c *Client) Send(cmd string, args map[string]any, cb Callback, transform Transform) {
	if cb == nil {
		cb = func(any, error) {}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		go cb(nil, common.ErrClientClosed)
		return
	}
	c.sendLocked(cmd, args, cb, transform)
}

// Close shuts the client down for good. Pending and buffered requests fail with
// common.ErrClientClosed, timers are stopped and later sends are refused.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}

	var failed []*pendingRequest
	if c.current != nil {
		failed = c.closeAttemptLocked(c.current)
	}
	failed = append(failed, c.buffer.drain()...)
	stopTimer(&c.reconnectTimer)
	c.reconnectGen++
	c.state = StateClosed
	c.notifier.publish(statusClosed())
	c.mu.Unlock()

	c.notifier.close()
	c.failAll(failed, common.ErrClientClosed)
	Logger.Infof("Client for %s closed", c.config.Endpoint)
	return nil
}

// State returns the current connection state
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the last published connectivity status
func (c *Client) Status() Status {
	return c.notifier.current()
}

// OnStatus subscribes fn to connectivity status changes. Statuses are delivered in
// publish order on a dedicated goroutine. The returned function unsubscribes.
func (c *Client) OnStatus(fn func(Status)) (unsubscribe func()) {
	return c.notifier.subscribe(fn)
}

// Pending returns the number of requests waiting for a response
func (c *Client) Pending() int {
	return c.registry.len()
}

// Buffered returns the number of requests waiting for the connection to open
func (c *Client) Buffered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.len()
}

// ReconnectAttempts returns the number of automatic reconnects scheduled since the last open
func (c *Client) ReconnectAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy.Attempts()
}

// Config returns the configuration of the client
func (c *Client) Config() common.ClientConfig {
	return c.config
}

// --------------------------------------------------------------------------
// Request Path (mu held)
// --------------------------------------------------------------------------

// sendLocked allocates the id and either writes or buffers the request
func (c *Client) sendLocked(cmd string, args map[string]any, cb Callback, transform Transform) {
	c.lastID++
	p := &pendingRequest{
		req:       common.NewRequest(c.lastID, cmd, args),
		callback:  cb,
		transform: transform,
	}

	if c.state == StateOpen {
		c.writeLocked(p)
		return
	}

	c.buffer.push(p)
	c.metrics.buffered.Inc()
	Logger.Debugf("Buffered %s (id %d) while %s", cmd, p.req.ID, c.state)
}

// writeLocked registers p and queues it on the writer of the open attempt.
// The network write happens on the writer goroutine; a failed write closes the
// connection and p then fails together with all other pending requests.
func (c *Client) writeLocked(p *pendingRequest) {
	data, err := c.serializer.EncodeRequest(p.req)
	if err != nil {
		Logger.Errorf("Failed to encode %s (id %d): %v", p.req.Cmd, p.req.ID, err)
		go p.callback(nil, fmt.Errorf("encode %s: %w", p.req.Cmd, err))
		return
	}

	c.registry.register(p)
	c.metrics.sent.Inc()
	c.current.writer.push(frame{id: p.req.ID, cmd: p.req.Cmd, data: data})
}

// failAll delivers err to every request in order. Must be called without mu.
func (c *Client) failAll(failed []*pendingRequest, err error) {
	for _, p := range failed {
		c.metrics.forceFailed.Inc()
		p.callback(nil, err)
	}
}
