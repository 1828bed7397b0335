package serializer

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/qnclient/rpc/common"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding.
// This is the encoding the notes server speaks, frames are sent as text.
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Name() string {
	return "json"
}

func (j jsonSerializerImpl) MessageKind() common.MessageKind {
	return common.MsgKindText
}

func (j jsonSerializerImpl) EncodeRequest(req *common.Request) ([]byte, error) {
	return json.Marshal(req)
}

func (j jsonSerializerImpl) DecodeResponse(b []byte) (*common.Response, error) {
	resp := &common.Response{}
	if err := json.Unmarshal(b, resp); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedMessage, err)
	}
	// "result": null carries no value
	if string(resp.Result) == "null" {
		resp.Result = nil
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return resp, nil
}

func (j jsonSerializerImpl) DecodeRequest(b []byte) (*common.Request, error) {
	req := &common.Request{}
	if err := json.Unmarshal(b, req); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedMessage, err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func (j jsonSerializerImpl) EncodeResponse(resp *common.Response) ([]byte, error) {
	return json.Marshal(resp)
}
