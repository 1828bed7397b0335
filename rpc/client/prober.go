package client

// --------------------------------------------------------------------------
// Liveness Prober
// --------------------------------------------------------------------------

// armProbeLocked schedules the next ping of attempt a
func (c *Client) armProbeLocked(a *attempt) {
	if c.config.PingInterval <= 0 {
		return
	}
	c.probeTimer = c.clock.AfterFunc(c.config.PingInterval, func() {
		c.probe(a)
	})
}

// probe sends a ping through the normal request path and re-arms itself.
// It does nothing once a is no longer the open attempt.
func (c *Client) probe(a *attempt) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != a || c.state != StateOpen {
		return
	}
	c.sendLocked(PingCmd, nil, pingDone, nil)
	c.armProbeLocked(a)
}

func pingDone(_ any, err error) {
	if err != nil {
		Logger.Warningf("Ping failed: %v", err)
	}
}
