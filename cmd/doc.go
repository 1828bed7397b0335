// Package cmd implements the qn command-line client for the notes server.
// Every command opens one persistent connection, runs its requests over it and
// closes it again.
//
// The package is organized into several subpackages:
//
//   - call: Sends a single raw command and prints the json result
//   - notes: Typed note operations (list, get, search, star, delete, etc.)
//   - watch: Keeps a connection open and prints status changes and pushes
//   - ping: Measures the round trip time of the ping command
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Flags can also be set through environment variables with the QN_ prefix
// (e.g. QN_ENDPOINT) or a .env file. See qn -help for a list of all commands.
package cmd
