package common

import (
	"errors"
	"fmt"
)

var (
	// ErrConnectionLost is delivered to every pending request when the connection closes
	ErrConnectionLost = errors.New("connection lost")
	// ErrClientClosed is delivered to requests issued after (or pending during) Close
	ErrClientClosed = errors.New("client closed")
	// ErrConnectTimeout is the close cause when the connection did not open in time
	ErrConnectTimeout = errors.New("connect timeout")
	// ErrMalformedMessage marks frames that could not be decoded into an envelope
	ErrMalformedMessage = errors.New("malformed message")
)

// RemoteError is the application level failure the server reported for one request
type RemoteError struct {
	ID      uint64
	Cmd     string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s (id %d) failed: %s", e.Cmd, e.ID, e.Message)
}
