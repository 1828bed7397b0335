// Package rpc provides the communication layer of the notes client. Requests
// and responses are multiplexed over a single persistent connection and matched
// by correlation id.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the request/response envelopes, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (websocket, TCP and Unix sockets with length-prefixed frames).
//
//   - serializer: Envelope serialization with multiple format options (JSON, Protobuf)
//     for converting between envelopes and frames.
//
//   - client: The persistent client. It buffers requests while disconnected,
//     reconnects with exponential backoff, probes liveness with pings and
//     publishes connectivity status changes.
package rpc
