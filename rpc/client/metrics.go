package client

import (
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// clientMetrics holds the counters of one client in its own metrics set,
// so several clients in one process do not share values
type clientMetrics struct {
	set *metrics.Set

	sent         *metrics.Counter
	buffered     *metrics.Counter
	responses    *metrics.Counter
	remoteErrors *metrics.Counter
	forceFailed  *metrics.Counter
	dropped      *metrics.Counter
	broadcasts   *metrics.Counter
	reconnects   *metrics.Counter
	timeouts     *metrics.Counter
}

func newClientMetrics(c *Client) *clientMetrics {
	set := metrics.NewSet()
	name := func(metric string) string {
		return fmt.Sprintf(`qn_client_%s{transport=%q}`, metric, c.transport.GetName())
	}

	m := &clientMetrics{
		set:          set,
		sent:         set.NewCounter(name("requests_sent_total")),
		buffered:     set.NewCounter(name("requests_buffered_total")),
		responses:    set.NewCounter(name("responses_total")),
		remoteErrors: set.NewCounter(name("remote_errors_total")),
		forceFailed:  set.NewCounter(name("requests_force_failed_total")),
		dropped:      set.NewCounter(name("messages_dropped_total")),
		broadcasts:   set.NewCounter(name("broadcasts_total")),
		reconnects:   set.NewCounter(name("reconnects_scheduled_total")),
		timeouts:     set.NewCounter(name("connect_timeouts_total")),
	}

	set.NewGauge(name("connected"), func() float64 {
		if c.State() == StateOpen {
			return 1
		}
		return 0
	})
	set.NewGauge(name("requests_pending"), func() float64 {
		return float64(c.Pending())
	})
	set.NewGauge(name("requests_queued"), func() float64 {
		return float64(c.Buffered())
	})
	return m
}

// WriteMetrics writes the metrics of the client in Prometheus text format to w
func (c *Client) WriteMetrics(w io.Writer) {
	c.metrics.set.WritePrometheus(w)
}
