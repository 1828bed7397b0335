// Package transport defines the interfaces and abstractions for the notes
// client's connection layer. It provides a common contract that all transport
// implementations must fulfill, enabling protocol-agnostic communication.
//
// The package focuses on:
//   - Defining a minimal interface for opening message oriented connections
//   - Keeping lifecycle policy (timeouts, reconnects, correlation) out of transports
//   - Enabling multiple transport implementations (websocket, TCP, Unix sockets)
//
// Key Components:
//
//   - IClientTransport: Interface for client-side transport implementations that
//     open connections. Dials honour context cancellation, which is how the client
//     enforces its connect timeout.
//
//   - IConn: A single connection carrying whole frames, each tagged with a
//     common.MessageKind (text or binary).
//
// Implementations:
//
//   - ws: gorilla/websocket based transport, the one used against the notes server.
//   - base, tcp, unix: length-prefixed frames over a raw stream connection.
package transport
