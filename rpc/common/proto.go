package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Envelope Structures
// --------------------------------------------------------------------------

// Request is the outbound envelope of a single logical call.
type Request struct {
	// ID is the correlation id, unique for the lifetime of a client
	ID uint64 `json:"id"`
	// Cmd names the remote operation
	Cmd string `json:"cmd"`
	// Args is the command specific payload
	Args map[string]any `json:"args"`
}

// Response is the inbound envelope. It is either the reply to a request
// (ID > 0) or a server push (ID == 0, Cmd set).
type Response struct {
	ID     uint64          `json:"id"`
	Cmd    string          `json:"cmd,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Err    string          `json:"error,omitempty"` // Empty if no error, otherwise contains the error message
}

// IsBroadcast reports whether the response was pushed by the server without a request.
func (r *Response) IsBroadcast() bool {
	return r.ID == 0 && r.Cmd != ""
}

// Validate checks the invariants every decoded response must satisfy
func (r *Response) Validate() error {
	if r.ID == 0 && r.Cmd == "" {
		return fmt.Errorf("%w: response has neither id nor cmd", ErrMalformedMessage)
	}
	return nil
}

// Validate checks the invariants every decoded request must satisfy
func (r *Request) Validate() error {
	if r.ID == 0 {
		return fmt.Errorf("%w: request id must be positive", ErrMalformedMessage)
	}
	if r.Cmd == "" {
		return fmt.Errorf("%w: request without cmd", ErrMalformedMessage)
	}
	return nil
}

// --------------------------------------------------------------------------
// Envelope Factory Functions
// --------------------------------------------------------------------------

// NewRequest creates a new request envelope. Nil args are sent as an empty object.
func NewRequest(id uint64, cmd string, args map[string]any) *Request {
	if args == nil {
		args = map[string]any{}
	}
	return &Request{
		ID:   id,
		Cmd:  cmd,
		Args: args,
	}
}

// NewResultResponse creates a successful response carrying result
func NewResultResponse(id uint64, cmd string, result any) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result of %s: %w", cmd, err)
	}
	return &Response{
		ID:     id,
		Cmd:    cmd,
		Result: raw,
	}, nil
}

// NewErrorResponse creates a failed response for the request with the given id
func NewErrorResponse(id uint64, cmd string, err error) *Response {
	msg := &Response{
		ID:  id,
		Cmd: cmd,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewBroadcast creates a server push for cmd
func NewBroadcast(cmd string, result any) (*Response, error) {
	return NewResultResponse(0, cmd, result)
}

// --------------------------------------------------------------------------
// Frame Kinds
// --------------------------------------------------------------------------

// MessageKind is the frame type a serializer produces and the transport writes
type MessageKind int

const (
	MsgKindText   MessageKind = iota + 1 // UTF-8 text frame (json)
	MsgKindBinary                        // binary frame (protobuf)
)

func (k MessageKind) String() string {
	switch k {
	case MsgKindText:
		return "text"
	case MsgKindBinary:
		return "binary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
