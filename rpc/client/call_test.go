package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ValentinKolb/qnclient/rpc/common"
)

type userInfo struct {
	Login string `json:"login"`
	Notes int    `json:"notes"`
}

// answerFirst plays the server in the background: it waits for the first request
// and pushes the response built by reply
func answerFirst(conn *fakeConn, reply func(*common.Request) *common.Response) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if reqs := conn.requests(); len(reqs) > 0 {
			data, err := conn.codec.EncodeResponse(reply(reqs[0]))
			if err == nil {
				conn.inbound <- data
			}
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCall(t *testing.T) {
	c, _, tr := newTestClient(t)
	conn := openClient(t, c, tr)

	go answerFirst(conn, func(req *common.Request) *common.Response {
		resp, _ := common.NewResultResponse(req.ID, req.Cmd, userInfo{Login: "kjk", Notes: 3})
		return resp
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	info, err := Call[userInfo](ctx, c, "getUserInfo", map[string]any{"userIDHash": "u1"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if info.Login != "kjk" || info.Notes != 3 {
		t.Errorf("info = %+v", info)
	}
}

func TestCallRemoteError(t *testing.T) {
	c, _, tr := newTestClient(t)
	conn := openClient(t, c, tr)

	go answerFirst(conn, func(req *common.Request) *common.Response {
		return common.NewErrorResponse(req.ID, req.Cmd, errors.New("permission denied"))
	})

	_, err := Call[userInfo](context.Background(), c, "getUserInfo", nil)
	var remote *common.RemoteError
	if !errors.As(err, &remote) || remote.Message != "permission denied" {
		t.Errorf("err = %v, want remote error", err)
	}
}

// TestCallContext stops waiting on cancel; the request itself still resolves once
func TestCallContext(t *testing.T) {
	c, _, tr := newTestClient(t)
	conn := openClient(t, c, tr)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Call[userInfo](ctx, c, "getUserInfo", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if c.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", c.Pending())
	}

	waitFor(t, "write", func() bool { return len(conn.requests()) == 1 })
	req := conn.requests()[0]
	conn.respond(t, req.ID, req.Cmd, userInfo{})
	waitFor(t, "late resolution", func() bool { return c.Pending() == 0 })
}

func TestCallNullResult(t *testing.T) {
	c, _, tr := newTestClient(t)
	conn := openClient(t, c, tr)

	go answerFirst(conn, func(req *common.Request) *common.Response {
		resp, _ := common.NewResultResponse(req.ID, req.Cmd, nil)
		return resp
	})

	got, err := Call[any](context.Background(), c, "starNote", map[string]any{"noteHashID": "n1"})
	if err != nil || got != nil {
		t.Errorf("Call = (%v, %v), want (nil, nil)", got, err)
	}
}
