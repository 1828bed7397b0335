package client

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// StatusKind classifies a connectivity status
type StatusKind int

const (
	StatusIdle         StatusKind = iota // never opened
	StatusConnecting                     // a connection attempt is running
	StatusConnected                      // open, no banner needed
	StatusReconnecting                   // waiting for the next automatic attempt
	StatusDisconnected                   // retries exhausted, waiting for Reconnect
	StatusClosed                         // Close was called
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusDisconnected:
		return "disconnected"
	case StatusClosed:
		return "closed"
	default:
		return fmt.Sprintf("status(%d)", int(k))
	}
}

// Status is a connectivity notification. An empty Text means connected: nothing to show.
type Status struct {
	Kind StatusKind
	// Text is the human readable message for a status banner
	Text string
	// RetryIn is the delay before the next automatic attempt (StatusReconnecting only)
	RetryIn time.Duration

	seq uint64
}

// Seq returns the publish order of the status
func (s Status) Seq() uint64 {
	return s.seq
}

func statusConnecting() Status {
	return Status{Kind: StatusConnecting, Text: "Connecting..."}
}

func statusConnected() Status {
	return Status{Kind: StatusConnected}
}

func statusReconnecting(delay time.Duration) Status {
	secs := int(math.Round(delay.Seconds()))
	return Status{
		Kind:    StatusReconnecting,
		Text:    fmt.Sprintf("Disconnected. Reconnecting in %d seconds...", secs),
		RetryIn: delay,
	}
}

func statusManual() Status {
	return Status{Kind: StatusDisconnected, Text: "Disconnected. Reconnect manually."}
}

func statusClosed() Status {
	return Status{Kind: StatusClosed, Text: "Connection closed."}
}

// --------------------------------------------------------------------------
// Notifier
// --------------------------------------------------------------------------

// statusNotifier keeps the last published status and delivers every status to
// the subscribers on one dispatch goroutine, in publish order. Publishing never blocks,
// so the client can publish while holding its own mutex.
type statusNotifier struct {
	mu        sync.Mutex
	last      Status
	nextSeq   uint64
	delivered uint64
	queue     []Status
	subs      map[uint64]func(Status)
	nextSub   uint64
	wake      chan struct{}
	closed    bool
	done      chan struct{}
}

func newStatusNotifier() *statusNotifier {
	n := &statusNotifier{
		last: Status{Kind: StatusIdle},
		subs: make(map[uint64]func(Status)),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go n.run()
	return n
}

// publish records s as the current status and queues it for delivery
func (n *statusNotifier) publish(s Status) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.nextSeq++
	s.seq = n.nextSeq
	n.last = s
	n.queue = append(n.queue, s)
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

func (n *statusNotifier) current() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

// subscribe registers fn and returns the function that removes it again
func (n *statusNotifier) subscribe(fn func(Status)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextSub++
	id := n.nextSub
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// close stops the dispatcher once the queued statuses are delivered. It does not wait,
// so it may be called from a subscriber.
func (n *statusNotifier) close() {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		select {
		case n.wake <- struct{}{}:
		default:
		}
	}
	n.mu.Unlock()
}

func (n *statusNotifier) run() {
	defer close(n.done)
	for range n.wake {
		n.mu.Lock()
		queue := n.queue
		n.queue = nil
		closed := n.closed
		n.mu.Unlock()

		for _, s := range queue {
			n.deliver(s)
		}
		if closed {
			return
		}
	}
}

// deliver hands s to all current subscribers. The sequence check skips a status
// that is older than one already delivered.
func (n *statusNotifier) deliver(s Status) {
	n.mu.Lock()
	if s.seq <= n.delivered {
		n.mu.Unlock()
		return
	}
	n.delivered = s.seq
	subs := make([]func(Status), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
