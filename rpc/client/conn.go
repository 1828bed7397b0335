package client

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/qnclient/rpc/common"
	"github.com/ValentinKolb/qnclient/rpc/transport"
)

// --------------------------------------------------------------------------
// Connection Lifecycle
// --------------------------------------------------------------------------

// openLocked moves Disconnected -> Connecting and starts the dial
func (c *Client) openLocked() {
	if c.state != StateDisconnected {
		return
	}

	// a manual open supersedes a scheduled one
	stopTimer(&c.reconnectTimer)
	c.reconnectGen++

	ctx, cancel := context.WithCancel(context.Background())
	a := &attempt{cancel: cancel}
	c.current = a
	c.state = StateConnecting
	c.connectTimer = c.clock.AfterFunc(c.config.ConnectTimeout, func() {
		c.connectTimeout(a)
	})
	c.notifier.publish(statusConnecting())

	Logger.Infof("Connecting to %s via %s", c.config.Endpoint, c.transport.GetName())
	go c.connect(ctx, a)
}

// connect runs one attempt: dial, open, read until the connection ends, close.
// Every attempt ends in exactly one call to handleClose that is not ignored,
// unless the connect timeout or Close retired the attempt first.
func (c *Client) connect(ctx context.Context, a *attempt) {
	conn, err := c.transport.Dial(ctx, c.config.Endpoint)
	if err != nil {
		c.handleClose(a, err)
		return
	}

	if !c.handleOpen(a, conn) {
		// the attempt was retired while dialing
		_ = conn.Close()
		return
	}

	err = c.readLoop(conn)
	c.handleClose(a, err)
}

// handleOpen moves Connecting -> Open: flushes the buffer and arms the prober.
// It returns false if the attempt is no longer current.
func (c *Client) handleOpen(a *attempt, conn transport.IConn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != a || c.state != StateConnecting {
		return false
	}

	stopTimer(&c.connectTimer)
	a.conn = conn
	a.writer = newWriter(conn, c.serializer.MessageKind())
	go a.writer.run()
	c.state = StateOpen
	c.policy.Reset()
	c.notifier.publish(statusConnected())
	Logger.Infof("Connected to %s", c.config.Endpoint)

	// flush before releasing the lock, so no new send can overtake a buffered one
	queued := c.buffer.drain()
	if len(queued) > 0 {
		Logger.Debugf("Flushing %d buffered requests", len(queued))
	}
	for _, p := range queued {
		c.writeLocked(p)
	}

	c.armProbeLocked(a)
	return true
}

// handleClose is the single close handler of an attempt, for dial errors,
// read errors and remote closes alike
func (c *Client) handleClose(a *attempt, cause error) {
	c.mu.Lock()
	if c.current != a {
		c.mu.Unlock()
		return
	}
	failed := c.disconnectLocked(a, cause)
	c.mu.Unlock()

	c.failAll(failed, fmt.Errorf("%w: %v", common.ErrConnectionLost, cause))
}

// connectTimeout force-closes an attempt that did not open in time
func (c *Client) connectTimeout(a *attempt) {
	c.mu.Lock()
	if c.current != a || c.state != StateConnecting {
		c.mu.Unlock()
		return
	}
	c.metrics.timeouts.Inc()
	failed := c.disconnectLocked(a, common.ErrConnectTimeout)
	c.mu.Unlock()

	c.failAll(failed, fmt.Errorf("%w: %v", common.ErrConnectionLost, common.ErrConnectTimeout))
}

// disconnectLocked retires the attempt, moves to Disconnected and schedules the
// next reconnect. It returns the pending requests to fail once mu is released.
func (c *Client) disconnectLocked(a *attempt, cause error) []*pendingRequest {
	wasOpen := c.state == StateOpen
	failed := c.closeAttemptLocked(a)
	c.state = StateDisconnected

	if wasOpen {
		Logger.Warningf("Connection to %s lost: %v", c.config.Endpoint, cause)
	} else {
		Logger.Warningf("Failed to connect to %s: %v", c.config.Endpoint, cause)
	}
	if len(failed) > 0 {
		Logger.Debugf("Failing %d pending requests", len(failed))
	}

	c.scheduleReconnectLocked()
	return failed
}

// closeAttemptLocked stops the timers and the connection of a and drains the registry
func (c *Client) closeAttemptLocked(a *attempt) []*pendingRequest {
	c.current = nil
	stopTimer(&c.connectTimer)
	stopTimer(&c.probeTimer)
	a.cancel()
	if a.writer != nil {
		a.writer.stop()
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			Logger.Debugf("Error closing connection: %v", err)
		}
	}
	return c.registry.drain()
}

// --------------------------------------------------------------------------
// Reconnect Scheduling
// --------------------------------------------------------------------------

// scheduleReconnectLocked arms the reconnect timer or, once the delay would exceed
// the maximum, publishes the manual reconnect status and schedules nothing
func (c *Client) scheduleReconnectLocked() {
	delay, ok := c.policy.Next()
	if !ok {
		Logger.Warningf("Reconnect delay exceeds %s, giving up on %s until a manual reconnect",
			c.config.Reconnect.MaxDelay, c.config.Endpoint)
		c.notifier.publish(statusManual())
		return
	}

	c.metrics.reconnects.Inc()
	c.reconnectGen++
	gen := c.reconnectGen
	c.notifier.publish(statusReconnecting(delay))
	Logger.Infof("Reconnecting to %s in %s (attempt %d)", c.config.Endpoint, delay, c.policy.Attempts())

	c.reconnectTimer = c.clock.AfterFunc(delay, func() {
		c.reconnectDue(gen)
	})
}

// reconnectDue is the body of the reconnect timer
func (c *Client) reconnectDue(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.reconnectGen {
		return
	}
	c.reconnectTimer = nil
	c.openLocked()
}
