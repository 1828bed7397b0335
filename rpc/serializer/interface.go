package serializer

import (
	"fmt"

	"github.com/ValentinKolb/qnclient/rpc/common"
)

// IRPCSerializer is the interface for all envelope serializers.
// The client side uses EncodeRequest and DecodeResponse, the mirror methods
// are used by servers (and test servers) speaking the same protocol.
type IRPCSerializer interface {
	// Name returns the name the serializer is selected by (e.g. "json")
	Name() string
	// MessageKind returns the frame type the encoded bytes have to be sent as
	MessageKind() common.MessageKind

	// EncodeRequest serializes a request envelope
	EncodeRequest(req *common.Request) ([]byte, error)
	// DecodeResponse deserializes and validates a response envelope.
	// Undecodable input returns an error wrapping common.ErrMalformedMessage.
	DecodeResponse(b []byte) (*common.Response, error)

	// DecodeRequest deserializes and validates a request envelope
	DecodeRequest(b []byte) (*common.Request, error)
	// EncodeResponse serializes a response envelope
	EncodeResponse(resp *common.Response) ([]byte, error)
}

// Names lists all serializers known to ByName
var Names = []string{"json", "proto"}

// ByName creates the serializer registered under name
func ByName(name string) (IRPCSerializer, error) {
	switch name {
	case "json":
		return NewJSONSerializer(), nil
	case "proto":
		return NewProtoSerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s (expected one of %v)", name, Names)
	}
}
