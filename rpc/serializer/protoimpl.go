package serializer

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ValentinKolb/qnclient/rpc/common"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxExactID is the largest integer a float64 number value holds exactly
const maxExactID = 1 << 53

// field names of the envelope inside the protobuf Struct
const (
	fieldID     = "id"
	fieldCmd    = "cmd"
	fieldArgs   = "args"
	fieldResult = "result"
	fieldError  = "error"
)

// NewProtoSerializer creates a new serializer that encodes envelopes as
// protobuf google.protobuf.Struct messages sent as binary frames
func NewProtoSerializer() IRPCSerializer {
	return &protoSerializerImpl{}
}

// protoSerializerImpl implements the IRPCSerializer interface using protobuf.
// The envelope has no generated message type: it is a Struct with the fields
// id (number), cmd (string), args (struct), result (any value) and error (string).
type protoSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (p protoSerializerImpl) Name() string {
	return "proto"
}

func (p protoSerializerImpl) MessageKind() common.MessageKind {
	return common.MsgKindBinary
}

func (p protoSerializerImpl) EncodeRequest(req *common.Request) ([]byte, error) {
	args, err := toStruct(req.Args)
	if err != nil {
		return nil, fmt.Errorf("encode args of %s: %w", req.Cmd, err)
	}
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldID:   structpb.NewNumberValue(float64(req.ID)),
		fieldCmd:  structpb.NewStringValue(req.Cmd),
		fieldArgs: structpb.NewStructValue(args),
	}}
	return proto.Marshal(s)
}

func (p protoSerializerImpl) DecodeResponse(b []byte) (*common.Response, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedMessage, err)
	}

	id, err := idField(s)
	if err != nil {
		return nil, err
	}
	resp := &common.Response{
		ID:  id,
		Cmd: s.Fields[fieldCmd].GetStringValue(),
		Err: s.Fields[fieldError].GetStringValue(),
	}

	// the result is kept as json so result transforms work the same for all serializers
	if v, ok := s.Fields[fieldResult]; ok {
		if _, isNull := v.GetKind().(*structpb.Value_NullValue); !isNull {
			raw, err := protojson.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("%w: result: %v", common.ErrMalformedMessage, err)
			}
			resp.Result = raw
		}
	}

	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return resp, nil
}

func (p protoSerializerImpl) DecodeRequest(b []byte) (*common.Request, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedMessage, err)
	}

	id, err := idField(s)
	if err != nil {
		return nil, err
	}
	req := &common.Request{
		ID:   id,
		Cmd:  s.Fields[fieldCmd].GetStringValue(),
		Args: s.Fields[fieldArgs].GetStructValue().AsMap(),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func (p protoSerializerImpl) EncodeResponse(resp *common.Response) ([]byte, error) {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldID: structpb.NewNumberValue(float64(resp.ID)),
	}}
	if resp.Cmd != "" {
		s.Fields[fieldCmd] = structpb.NewStringValue(resp.Cmd)
	}
	if resp.Err != "" {
		s.Fields[fieldError] = structpb.NewStringValue(resp.Err)
	}
	if len(resp.Result) > 0 {
		v := &structpb.Value{}
		if err := protojson.Unmarshal(resp.Result, v); err != nil {
			return nil, fmt.Errorf("encode result of %s: %w", resp.Cmd, err)
		}
		s.Fields[fieldResult] = v
	}
	return proto.Marshal(s)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// idField reads the id field, which has to be a non-negative integral number
func idField(s *structpb.Struct) (uint64, error) {
	v, ok := s.Fields[fieldID]
	if !ok {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: id is not a number", common.ErrMalformedMessage)
	}
	if n.NumberValue < 0 || n.NumberValue != math.Trunc(n.NumberValue) || n.NumberValue > maxExactID {
		return 0, fmt.Errorf("%w: invalid id %v", common.ErrMalformedMessage, n.NumberValue)
	}
	return uint64(n.NumberValue), nil
}

// toStruct converts args to a Struct. structpb only accepts plain json types,
// so the args are normalized through json first ([]string, structs, ... become
// []any and map[string]any).
func toStruct(args map[string]any) (*structpb.Struct, error) {
	if len(args) == 0 {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	var plain map[string]any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, err
	}
	return structpb.NewStruct(plain)
}
