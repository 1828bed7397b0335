// Package tcp implements the TCP socket connector for the notes client's stream transport.
// It provides a concrete implementation of the base package's connector interface.
//
// Endpoints look like tcp://host:port. See the base package documentation for the
// frame format.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector, applying
//     TCPNoDelay and TCPKeepAlive from common.TransportConfig.
package tcp
