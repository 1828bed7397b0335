// Package serializer provides envelope serialization for the notes client's
// RPC protocol. It defines a common interface and two implementations that
// convert between common.Request / common.Response and wire frames.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//     Besides the byte conversion it reports the websocket frame kind the encoded
//     bytes have to be sent as.
//
//   - jsonSerializerImpl: JSON envelopes sent as text frames. This is what the
//     notes server speaks and the default of the CLI.
//
//   - protoSerializerImpl: protobuf google.protobuf.Struct envelopes sent as
//     binary frames, for servers that prefer a binary encoding.
//
// Both implementations validate decoded envelopes; anything that cannot be
// decoded returns an error wrapping common.ErrMalformedMessage so callers can
// route it to their protocol-anomaly handling instead of failing.
//
// Results are always exposed as json.RawMessage, independent of the serializer,
// so result transforms only have to understand one representation.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
package serializer
