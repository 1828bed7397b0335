// Package common provides the core data structures and utilities shared across
// the notes client. It defines the wire envelopes, the client configuration and
// the logging setup used by the other packages.
//
// The package focuses on:
//   - Envelope definitions for the request/response protocol
//   - Configuration structures for the client, its transport and reconnect policy
//   - Custom logging implementation integrated with Dragonboat's logger facade
//   - Sentinel errors shared by the client and the typed notes API
//
// Key Components:
//
//   - Request: Outbound envelope {id, cmd, args}. The id is the correlation id
//     that the server echoes on its response.
//
//   - Response: Inbound envelope {id, cmd, error, result}. A response with id 0
//     and a command name is a server push (broadcast) rather than a reply.
//
//   - MessageKind: Frame type (text or binary) a serializer produces for the
//     transport layer.
//
//   - ClientConfig: Configuration for the client, controlling the endpoint,
//     connect timeout, liveness probe interval, reconnect policy and transport
//     settings.
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's
//     logging system while providing consistent formatting across the application.
package common
