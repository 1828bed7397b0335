package notes

import (
	"encoding/json"
	"sync"

	"github.com/ValentinKolb/qnclient/rpc/client"
	"github.com/ValentinKolb/qnclient/rpc/common"
)

type sentRequest struct {
	cmd       string
	args      map[string]any
	cb        client.Callback
	transform client.Transform
}

// resolve answers the request the way the client would
func (r *sentRequest) resolve(raw string, remoteErr string) {
	if remoteErr != "" {
		r.cb(nil, &common.RemoteError{Cmd: r.cmd, Message: remoteErr})
		return
	}
	var result any = json.RawMessage(raw)
	if r.transform != nil {
		var err error
		if result, err = r.transform(json.RawMessage(raw)); err != nil {
			r.cb(nil, err)
			return
		}
	}
	r.cb(result, nil)
}

// fakeConn records requests. With reply set it answers every request in the background.
type fakeConn struct {
	mu         sync.Mutex
	sent       []*sentRequest
	reply      func(cmd string, args map[string]any) (raw string, remoteErr string)
	broadcasts map[string]func(json.RawMessage)
}

func (f *fakeConn) Send(cmd string, args map[string]any, cb client.Callback, transform client.Transform) {
	req := &sentRequest{cmd: cmd, args: args, cb: cb, transform: transform}
	f.mu.Lock()
	f.sent = append(f.sent, req)
	reply := f.reply
	f.mu.Unlock()

	if reply != nil {
		go func() {
			raw, remoteErr := reply(cmd, args)
			req.resolve(raw, remoteErr)
		}()
	}
}

func (f *fakeConn) OnBroadcast(cmd string, handler client.BroadcastHandler, transform client.Transform) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broadcasts == nil {
		f.broadcasts = make(map[string]func(json.RawMessage))
	}
	f.broadcasts[cmd] = func(raw json.RawMessage) {
		v, err := transform(raw)
		if err == nil {
			handler(v)
		}
	}
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.broadcasts, cmd)
	}
}

func (f *fakeConn) push(cmd string, raw string) bool {
	f.mu.Lock()
	fn, ok := f.broadcasts[cmd]
	f.mu.Unlock()
	if ok {
		fn(json.RawMessage(raw))
	}
	return ok
}

func (f *fakeConn) requests() []*sentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*sentRequest(nil), f.sent...)
}

// compact note fixtures
const (
	noteStarred = `["abc-3","Shopping",120,1,1500000000000,1500000600000,2,["todo","home"],"eggs, milk"]`
	noteFull    = `["x-y-7","Diary",42,20,1500000000000,1500000000000,1,null,"dear diary","dear diary, today"]`
)
