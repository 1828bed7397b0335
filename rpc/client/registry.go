package client

import (
	"encoding/json"
	"slices"

	"github.com/ValentinKolb/qnclient/rpc/common"
	"github.com/puzpuzpuz/xsync/v3"
)

// Callback receives the outcome of one request: the (transformed) result or an error.
// Without a transform the result is the raw json.RawMessage sent by the server.
// Callbacks run on the client's read goroutine and must not block.
type Callback func(result any, err error)

// Transform converts the raw result before it is handed to the callback
type Transform func(raw json.RawMessage) (any, error)

// pendingRequest is a request that was issued but not yet resolved
type pendingRequest struct {
	req       *common.Request
	callback  Callback
	transform Transform
}

// registry maps correlation ids to pending requests.
// Every id is resolved at most once: resolve and drain both remove atomically.
type registry struct {
	pending *xsync.MapOf[uint64, *pendingRequest]
}

func newRegistry() *registry {
	return &registry{pending: xsync.NewMapOf[uint64, *pendingRequest]()}
}

func (r *registry) register(p *pendingRequest) {
	r.pending.Store(p.req.ID, p)
}

// resolve removes and returns the request with the given id
func (r *registry) resolve(id uint64) (*pendingRequest, bool) {
	return r.pending.LoadAndDelete(id)
}

// drain removes all pending requests and returns them ordered by id
func (r *registry) drain() []*pendingRequest {
	var out []*pendingRequest
	r.pending.Range(func(id uint64, _ *pendingRequest) bool {
		if p, ok := r.pending.LoadAndDelete(id); ok {
			out = append(out, p)
		}
		return true
	})
	slices.SortFunc(out, func(a, b *pendingRequest) int {
		switch {
		case a.req.ID < b.req.ID:
			return -1
		case a.req.ID > b.req.ID:
			return 1
		}
		return 0
	})
	return out
}

func (r *registry) len() int {
	return r.pending.Size()
}
