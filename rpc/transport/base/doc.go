// Package base implements the shared stream transport of the notes client. It turns any
// net.Conn into a transport.IConn by framing messages, so that the medium specific
// packages (tcp, unix) only need to provide a connector.
//
// Frame format:
//
//	+--------+----------------+-----------------+
//	| 1 byte | 4 bytes (BE)   | N bytes         |
//	| kind   | payload length | payload         |
//	+--------+----------------+-----------------+
//
// The kind byte is a common.MessageKind (text or binary), mirroring websocket frame
// types so both transports look the same to the client.
//
// Key Components:
//
//   - IClientConnector: Interface for the medium specific dial and socket options.
//
//   - NewFramedTransport: Factory returning a transport.IClientTransport for a connector.
//
// Writes are serialized with a mutex and honour TransportConfig.WriteTimeout. Reads
// reject frames larger than TransportConfig.ReadLimit.
package base
