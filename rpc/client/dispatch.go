package client

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/qnclient/rpc/common"
	"github.com/ValentinKolb/qnclient/rpc/transport"
)

// BroadcastHandler receives a server push after the optional transform
type BroadcastHandler func(result any)

type broadcastHandler struct {
	handler   BroadcastHandler
	transform Transform
}

// OnBroadcast registers handler for server pushes with the given cmd, replacing any
// handler registered before. The returned function removes the registration.
func (c *Client) OnBroadcast(cmd string, handler BroadcastHandler, transform Transform) (unregister func()) {
	entry := &broadcastHandler{handler: handler, transform: transform}
	c.broadcasts.Store(cmd, entry)
	return func() {
		// only remove the entry if it was not replaced in the meantime
		c.broadcasts.Compute(cmd, func(old *broadcastHandler, loaded bool) (*broadcastHandler, bool) {
			return old, !loaded || old == entry
		})
	}
}

// --------------------------------------------------------------------------
// Inbound Path
// --------------------------------------------------------------------------

// readLoop dispatches frames until the connection fails
func (c *Client) readLoop(conn transport.IConn) error {
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if kind != c.serializer.MessageKind() {
			Logger.Debugf("Received %s frame, %s serializer expects %s", kind, c.serializer.Name(), c.serializer.MessageKind())
		}
		c.dispatch(data)
	}
}

// dispatch decodes one frame and resolves the matching request.
// Anomalies (undecodable frames, unknown ids) are logged and dropped.
func (c *Client) dispatch(data []byte) {
	resp, err := c.serializer.DecodeResponse(data)
	if err != nil {
		c.metrics.dropped.Inc()
		Logger.Warningf("Dropping undecodable message: %v", err)
		return
	}

	if resp.IsBroadcast() {
		c.dispatchBroadcast(resp)
		return
	}

	p, ok := c.registry.resolve(resp.ID)
	if !ok {
		c.metrics.dropped.Inc()
		Logger.Warningf("Dropping response for unknown id %d (cmd %q)", resp.ID, resp.Cmd)
		return
	}
	c.metrics.responses.Inc()

	if resp.Err != "" {
		c.metrics.remoteErrors.Inc()
		p.callback(nil, &common.RemoteError{ID: resp.ID, Cmd: p.req.Cmd, Message: resp.Err})
		return
	}

	result, err := applyTransform(p.transform, resp.Result)
	if err != nil {
		Logger.Warningf("Failed to transform result of %s (id %d): %v", p.req.Cmd, resp.ID, err)
		p.callback(nil, fmt.Errorf("transform result of %s: %w", p.req.Cmd, err))
		return
	}
	p.callback(result, nil)
}

func (c *Client) dispatchBroadcast(resp *common.Response) {
	entry, ok := c.broadcasts.Load(resp.Cmd)
	if !ok {
		Logger.Debugf("No handler for broadcast %q", resp.Cmd)
		return
	}
	c.metrics.broadcasts.Inc()

	if resp.Err != "" {
		Logger.Warningf("Broadcast %q carried error: %s", resp.Cmd, resp.Err)
		return
	}

	result, err := applyTransform(entry.transform, resp.Result)
	if err != nil {
		Logger.Warningf("Failed to transform broadcast %q: %v", resp.Cmd, err)
		return
	}
	entry.handler(result)
}

// applyTransform returns raw as json.RawMessage if no transform is set
func applyTransform(transform Transform, raw json.RawMessage) (any, error) {
	if transform == nil {
		return raw, nil
	}
	return transform(raw)
}
