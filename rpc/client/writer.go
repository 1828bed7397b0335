package client

import (
	"sync"

	"github.com/ValentinKolb/qnclient/rpc/common"
	"github.com/ValentinKolb/qnclient/rpc/transport"
)

// --------------------------------------------------------------------------
// Connection Writer
// --------------------------------------------------------------------------

// frame is an encoded request waiting to be written
type frame struct {
	id   uint64
	cmd  string
	data []byte
}

// writer owns all writes to the connection of one attempt. Frames are written
// in push order on the writer's goroutine, so a slow or stalled peer never
// holds up the client mutex. A failed write closes the connection; the read
// loop then ends the attempt through the normal close path.
type writer struct {
	conn transport.IConn
	kind common.MessageKind

	mu    sync.Mutex
	queue []frame

	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newWriter(conn transport.IConn, kind common.MessageKind) *writer {
	return &writer{
		conn: conn,
		kind: kind,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// push appends f to the queue. It never blocks.
func (w *writer) push(f frame) {
	w.mu.Lock()
	w.queue = append(w.queue, f)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// stop ends the writer goroutine. Frames still queued are discarded, their
// requests are failed by whoever retired the attempt.
func (w *writer) stop() {
	w.stopOnce.Do(func() { close(w.done) })
}

func (w *writer) stopped() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// run writes queued frames until stop is called or a write fails
func (w *writer) run() {
	for {
		select {
		case <-w.done:
			return
		case <-w.wake:
		}

		for {
			w.mu.Lock()
			batch := w.queue
			w.queue = nil
			w.mu.Unlock()
			if len(batch) == 0 {
				break
			}

			for _, f := range batch {
				if w.stopped() {
					return
				}
				if err := w.conn.WriteMessage(w.kind, f.data); err != nil {
					if w.stopped() {
						// the attempt was retired and closed the conn
						return
					}
					Logger.Warningf("Failed to write %s (id %d): %v", f.cmd, f.id, err)
					w.stop()
					_ = w.conn.Close()
					return
				}
			}
		}
	}
}
