// Package client implements the persistent multiplexed request/response client of the
// notes application. One Client owns one long-lived connection and carries any number
// of concurrent requests over it.
//
// The package focuses on:
//   - Correlating asynchronous responses to their callers by request id
//   - Shielding callers from the connection lifecycle (buffering, reconnects)
//   - Surfacing connectivity only through a status side channel
//
// Key Components:
//
//   - Client: Connection manager, request registry, outbound buffer and liveness prober
//     behind one mutex. Send never blocks on the network state and never fails
//     synchronously; every outcome arrives through the callback.
//
//   - ReconnectPolicy: Exponential backoff (BaseDelay * DecayFactor^attempts). Once the
//     delay would exceed MaxDelay, automatic retries stop until Reconnect is called.
//
//   - Status / OnStatus: Connectivity notifications. An empty Status.Text means connected.
//
//   - Call / DecodeInto: Blocking, typed access on top of Send.
//
// Usage Example:
//
//	cfg := common.DefaultClientConfig("wss://notes.example.com/ws")
//	c, _ := client.New(cfg, ws.NewWebsocketTransport(cfg.Transport), serializer.NewJSONSerializer())
//	c.Open()
//	defer c.Close()
//
//	c.Send("getRecentNotes", nil, func(result any, err error) {
//		// result is the raw json.RawMessage
//	}, nil)
//
//	info, err := client.Call[map[string]any](ctx, c, "getUserInfo", map[string]any{"userIDHash": "abc"})
//
// Failure semantics:
//
//   - When the connection closes, every pending request fails with an error wrapping
//     common.ErrConnectionLost. Requests are never retried automatically.
//   - Requests issued while not connected are buffered and written in order on the next open.
//   - A server side error for one request is delivered as *common.RemoteError to that request only.
//   - The connect timeout is the only timeout; Call additionally honours its context.
package client
