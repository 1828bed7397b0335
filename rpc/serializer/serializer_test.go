package serializer

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/ValentinKolb/qnclient/rpc/common"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":  NewJSONSerializer,
	"Proto": NewProtoSerializer,
}

// normalize converts v to its plain json form so values decoded by different
// serializers ([]string vs []any, int vs float64) can be compared
func normalize(t *testing.T, v any) any {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal %v: %v", v, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Failed to unmarshal %s: %v", raw, err)
	}
	return out
}

// TestRequestRoundTrip tests that requests written by the client are read back unchanged by a server
func TestRequestRoundTrip(t *testing.T) {
	requests := []*common.Request{
		common.NewRequest(1, "ping", nil),
		common.NewRequest(2, "getNote", map[string]any{"noteHashID": "abc"}),
		common.NewRequest(3, "searchUserNotes", map[string]any{
			"userIDHash": "u1",
			"searchTerm": "go",
			"tags":       []string{"a", "b"},
			"limit":      25,
		}),
	}

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()
			for _, req := range requests {
				data, err := s.EncodeRequest(req)
				if err != nil {
					t.Fatalf("Failed to encode request %d: %v", req.ID, err)
				}

				result, err := s.DecodeRequest(data)
				if err != nil {
					t.Fatalf("Failed to decode request %d: %v", req.ID, err)
				}

				if result.ID != req.ID || result.Cmd != req.Cmd {
					t.Errorf("Envelope mismatch: expected (%d,%s), got (%d,%s)", req.ID, req.Cmd, result.ID, result.Cmd)
				}
				if !reflect.DeepEqual(normalize(t, req.Args), normalize(t, result.Args)) {
					t.Errorf("Args of request %d don't match:\nOriginal: %v\nResult: %v", req.ID, req.Args, result.Args)
				}
			}
		})
	}
}

// TestResponseRoundTrip tests replies, errors and broadcasts written by a server
func TestResponseRoundTrip(t *testing.T) {
	ok, err := common.NewResultResponse(7, "getNotes", map[string]any{"Notes": []any{[]any{"n1-1", "title"}}})
	if err != nil {
		t.Fatal(err)
	}
	push, err := common.NewBroadcast("broadcastUserNotes", []any{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	failed := common.NewErrorResponse(8, "getNote", errors.New("note not found"))

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()
			for _, resp := range []*common.Response{ok, push, failed} {
				data, err := s.EncodeResponse(resp)
				if err != nil {
					t.Fatalf("Failed to encode response %d: %v", resp.ID, err)
				}

				result, err := s.DecodeResponse(data)
				if err != nil {
					t.Fatalf("Failed to decode response %d: %v", resp.ID, err)
				}

				if result.ID != resp.ID || result.Cmd != resp.Cmd || result.Err != resp.Err {
					t.Errorf("Envelope mismatch:\nOriginal: %+v\nResult: %+v", resp, result)
				}
				if result.IsBroadcast() != resp.IsBroadcast() {
					t.Errorf("Broadcast flag mismatch for %s", resp.Cmd)
				}
				if len(resp.Result) == 0 {
					if len(result.Result) != 0 {
						t.Errorf("Expected no result, got %s", result.Result)
					}
					continue
				}
				var want, got any
				_ = json.Unmarshal(resp.Result, &want)
				if err := json.Unmarshal(result.Result, &got); err != nil {
					t.Fatalf("Result is not valid json: %v", err)
				}
				if !reflect.DeepEqual(want, got) {
					t.Errorf("Result mismatch: expected %v, got %v", want, got)
				}
			}
		})
	}
}

// TestNullResult tests that an explicit null result is treated as no result
func TestNullResult(t *testing.T) {
	resp, err := NewJSONSerializer().DecodeResponse([]byte(`{"id":3,"cmd":"deleteNote","result":null}`))
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if resp.Result != nil {
		t.Errorf("Expected nil result, got %s", resp.Result)
	}
}

// TestDecodeMalformed tests that undecodable input is reported as ErrMalformedMessage
func TestDecodeMalformed(t *testing.T) {
	inputs := map[string]map[string][]byte{
		"JSON": {
			"garbage":  []byte("{not json"),
			"empty":    []byte("{}"),
			"wrong id": []byte(`{"id":"seven","cmd":"x"}`),
		},
		"Proto": {
			"garbage": {0xff, 0xff, 0xff},
			"empty":   {},
		},
	}

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()
			for what, data := range inputs[name] {
				if _, err := s.DecodeResponse(data); !errors.Is(err, common.ErrMalformedMessage) {
					t.Errorf("%s: expected ErrMalformedMessage, got %v", what, err)
				}
			}
		})
	}
}

// TestProtoRejectsFractionalID tests the id validation of the protobuf envelope
func TestProtoRejectsFractionalID(t *testing.T) {
	for _, id := range []float64{1.5, -3} {
		data, err := proto.Marshal(&structpb.Struct{Fields: map[string]*structpb.Value{
			fieldID:  structpb.NewNumberValue(id),
			fieldCmd: structpb.NewStringValue("x"),
		}})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := NewProtoSerializer().DecodeResponse(data); !errors.Is(err, common.ErrMalformedMessage) {
			t.Errorf("id %v: expected ErrMalformedMessage, got %v", id, err)
		}
	}
}

// TestByName tests the serializer lookup used by the CLI
func TestByName(t *testing.T) {
	for _, name := range Names {
		s, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%s) failed: %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("Expected serializer %s, got %s", name, s.Name())
		}
	}
	if _, err := ByName("gob"); err == nil {
		t.Error("Expected an error for an unknown serializer")
	}

	if NewJSONSerializer().MessageKind() != common.MsgKindText {
		t.Error("json has to be sent as text frames")
	}
	if NewProtoSerializer().MessageKind() != common.MsgKindBinary {
		t.Error("proto has to be sent as binary frames")
	}
}
