package client

import (
	"math"
	"time"

	"github.com/ValentinKolb/qnclient/rpc/common"
)

// ReconnectPolicy computes the delay before the next automatic reconnect.
// The delay for attempt n is BaseDelay * DecayFactor^n. The first delay that
// would exceed MaxDelay stops the automatic retries. It is not safe for
// concurrent use; the client guards it with its mutex.
type ReconnectPolicy struct {
	config   common.ReconnectConfig
	attempts int
}

// NewReconnectPolicy creates a policy with zero attempts
func NewReconnectPolicy(config common.ReconnectConfig) *ReconnectPolicy {
	return &ReconnectPolicy{config: config}
}

// Next returns the delay before the next attempt and increments the attempt count.
// If the delay exceeds the maximum it resets the attempt count and returns false:
// no automatic attempt should be scheduled.
func (p *ReconnectPolicy) Next() (time.Duration, bool) {
	delay := p.Delay()
	if delay > p.config.MaxDelay {
		p.attempts = 0
		return 0, false
	}
	p.attempts++
	return delay, true
}

// Delay returns the delay for the current attempt count without changing it
func (p *ReconnectPolicy) Delay() time.Duration {
	f := float64(p.config.BaseDelay) * math.Pow(p.config.DecayFactor, float64(p.attempts))
	if f > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(f)
}

// Reset sets the attempt count back to zero (after a successful open)
func (p *ReconnectPolicy) Reset() {
	p.attempts = 0
}

// Attempts returns the number of automatic attempts scheduled since the last reset
func (p *ReconnectPolicy) Attempts() int {
	return p.attempts
}
