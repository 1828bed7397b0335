package base

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/ValentinKolb/qnclient/rpc/common"
)

// TestFrameRoundTrip writes frames into a buffer and reads them back in order
func TestFrameRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		kind common.MessageKind
		data []byte
	}{
		{name: "text", kind: common.MsgKindText, data: []byte(`{"id":1,"cmd":"ping"}`)},
		{name: "binary", kind: common.MsgKindBinary, data: []byte{0x00, 0xff, 0x10}},
		{name: "empty", kind: common.MsgKindText, data: []byte{}},
	}

	// net.Pipe is synchronous, so the writes run in their own goroutine
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		for _, tt := range tests {
			_ = writeFrame(client, tt.kind, tt.data)
		}
	}()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, data, err := readFrame(server, 0)
			if err != nil {
				t.Fatalf("readFrame failed: %v", err)
			}
			if kind != tt.kind {
				t.Errorf("kind = %v, want %v", kind, tt.kind)
			}
			if !bytes.Equal(data, tt.data) {
				t.Errorf("data = %v, want %v", data, tt.data)
			}
		})
	}
}

// TestReadFrameRejects covers the invalid header cases
func TestReadFrameRejects(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		limit int64
	}{
		{name: "unknown kind", input: []byte{9, 0, 0, 0, 1, 'x'}},
		{name: "over limit", input: []byte{1, 0, 0, 0, 5, 'h', 'e', 'l', 'l', 'o'}, limit: 4},
		{name: "truncated header", input: []byte{1, 0}},
		{name: "truncated payload", input: []byte{1, 0, 0, 0, 5, 'h'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := readFrame(bytes.NewReader(tt.input), tt.limit); err == nil {
				t.Error("expected readFrame to fail")
			}
		})
	}
}

// TestFramedConnClose checks that Close unblocks a reader and can be called twice
func TestFramedConnClose(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	conn := &framedConn{conn: client, config: common.TransportConfig{WriteTimeout: time.Second}}

	done := make(chan error, 1)
	go func() {
		_, _, err := conn.ReadMessage()
		done <- err
	}()

	if err := conn.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}

	select {
	case err := <-done:
		if err == nil {
			t.Error("ReadMessage returned no error after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ReadMessage did not return after Close")
	}
}
