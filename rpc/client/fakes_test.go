package client

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/qnclient/rpc/common"
	"github.com/ValentinKolb/qnclient/rpc/serializer"
	"github.com/ValentinKolb/qnclient/rpc/transport"
)

// --------------------------------------------------------------------------
// Manual Clock
// --------------------------------------------------------------------------

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock only moves when Advance is called. Due timers fire on the caller's goroutine.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	slices.SortStableFunc(due, func(a, b *fakeTimer) int {
		return int(a.at - b.at)
	})
	for _, t := range due {
		t.f()
	}
}

// pending returns the durations of all timers that are neither stopped nor fired
func (c *fakeClock) pending() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []time.Duration
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.d)
		}
	}
	return out
}

// --------------------------------------------------------------------------
// Fake Transport
// --------------------------------------------------------------------------

var errRefused = errors.New("connection refused")

type fakeTransport struct {
	mu       sync.Mutex
	reject   bool // dials fail immediately
	hold     bool // dials block until their context is cancelled
	dials    int
	returned int
	conns    []*fakeConn
}

func (tr *fakeTransport) GetName() string {
	return "fake"
}

func (tr *fakeTransport) Dial(ctx context.Context, _ string) (transport.IConn, error) {
	tr.mu.Lock()
	tr.dials++
	reject, hold := tr.reject, tr.hold
	tr.mu.Unlock()

	defer func() {
		tr.mu.Lock()
		tr.returned++
		tr.mu.Unlock()
	}()

	if hold {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if reject {
		return nil, errRefused
	}

	conn := newFakeConn()
	tr.mu.Lock()
	tr.conns = append(tr.conns, conn)
	tr.mu.Unlock()
	return conn, nil
}

func (tr *fakeTransport) set(reject, hold bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.reject, tr.hold = reject, hold
}

func (tr *fakeTransport) dialCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.dials
}

func (tr *fakeTransport) returnedCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.returned
}

func (tr *fakeTransport) last() *fakeConn {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.conns) == 0 {
		return nil
	}
	return tr.conns[len(tr.conns)-1]
}

// fakeConn plays the server side. Requests are decoded with the json serializer.
type fakeConn struct {
	codec      serializer.IRPCSerializer
	mu         sync.Mutex
	reqs       []*common.Request
	failWrites bool
	stall      chan struct{} // if set, writes block until it is closed or the conn is
	inbound    chan []byte
	closed     chan struct{}
	closeOnce  sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		codec:   serializer.NewJSONSerializer(),
		inbound: make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) WriteMessage(_ common.MessageKind, data []byte) error {
	select {
	case <-c.closed:
		return errors.New("write on closed connection")
	default:
	}

	c.mu.Lock()
	stall := c.stall
	c.mu.Unlock()
	if stall != nil {
		select {
		case <-stall:
		case <-c.closed:
			return errors.New("write on closed connection")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrites {
		return errors.New("broken pipe")
	}
	req, err := c.codec.DecodeRequest(data)
	if err != nil {
		return err
	}
	c.reqs = append(c.reqs, req)
	return nil
}

func (c *fakeConn) ReadMessage() (common.MessageKind, []byte, error) {
	select {
	case data := <-c.inbound:
		return common.MsgKindText, data, nil
	case <-c.closed:
		return 0, nil, errors.New("connection closed")
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// stallWrites makes every following write block until the returned release is called
func (c *fakeConn) stallWrites() (release func()) {
	ch := make(chan struct{})
	c.mu.Lock()
	c.stall = ch
	c.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) requests() []*common.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.reqs)
}

func (c *fakeConn) cmds() []string {
	var out []string
	for _, r := range c.requests() {
		out = append(out, r.Cmd)
	}
	return out
}

// request returns the first written request with cmd
func (c *fakeConn) request(t *testing.T, cmd string) *common.Request {
	t.Helper()
	for _, r := range c.requests() {
		if r.Cmd == cmd {
			return r
		}
	}
	t.Fatalf("no %s request written (have %v)", cmd, c.cmds())
	return nil
}

func (c *fakeConn) respond(t *testing.T, id uint64, cmd string, result any) {
	t.Helper()
	resp, err := common.NewResultResponse(id, cmd, result)
	if err != nil {
		t.Fatalf("NewResultResponse failed: %v", err)
	}
	c.push(t, resp)
}

func (c *fakeConn) fail(t *testing.T, id uint64, cmd, msg string) {
	t.Helper()
	c.push(t, common.NewErrorResponse(id, cmd, errors.New(msg)))
}

func (c *fakeConn) push(t *testing.T, resp *common.Response) {
	t.Helper()
	data, err := c.codec.EncodeResponse(resp)
	if err != nil {
		t.Fatalf("EncodeResponse failed: %v", err)
	}
	c.inbound <- data
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func testConfig() common.ClientConfig {
	return common.DefaultClientConfig("ws://notes.test/ws")
}

func newTestClient(t *testing.T) (*Client, *fakeClock, *fakeTransport) {
	t.Helper()
	clk := &fakeClock{}
	tr := &fakeTransport{}
	c, err := New(testConfig(), tr, serializer.NewJSONSerializer(), WithClock(clk))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, clk, tr
}

// openClient opens c and waits for the connection
func openClient(t *testing.T, c *Client, tr *fakeTransport) *fakeConn {
	t.Helper()
	c.Open()
	waitFor(t, "open", func() bool { return c.State() == StateOpen })
	return tr.last()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

// outcome is what a callback received
type outcome struct {
	result any
	err    error
}

// recorder collects the outcomes of callbacks by name
type recorder struct {
	mu    sync.Mutex
	got   map[string][]outcome
	order []string
}

func newRecorder() *recorder {
	return &recorder{got: make(map[string][]outcome)}
}

func (r *recorder) cb(name string) Callback {
	return func(result any, err error) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.got[name] = append(r.got[name], outcome{result: result, err: err})
		r.order = append(r.order, name)
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func (r *recorder) outcomes(name string) []outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.got[name])
}
