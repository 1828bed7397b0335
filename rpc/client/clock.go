package client

import "time"

// Clock creates the timers of the client (connect timeout, reconnect delay, liveness probe).
// Tests replace it with a manual clock via WithClock.
type Clock interface {
	// AfterFunc calls f in its own goroutine after d has elapsed
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending call created by Clock.AfterFunc
type Timer interface {
	// Stop prevents the call from firing. It returns false if the call already fired or was stopped.
	Stop() bool
}

// realClock is the Clock backed by the time package
type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// stopTimer stops t if it is set and clears the reference
func stopTimer(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
