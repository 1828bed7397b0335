package client

// outboundBuffer queues requests issued while the connection is not open.
// Entries keep the id they got at send time and leave the buffer in FIFO order.
type outboundBuffer struct {
	entries []*pendingRequest
}

func (b *outboundBuffer) push(p *pendingRequest) {
	b.entries = append(b.entries, p)
}

// drain empties the buffer and returns its entries oldest first
func (b *outboundBuffer) drain() []*pendingRequest {
	out := b.entries
	b.entries = nil
	return out
}

func (b *outboundBuffer) len() int {
	return len(b.entries)
}
