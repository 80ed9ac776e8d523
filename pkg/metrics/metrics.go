package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records outcomes of checkout attempts.
type CheckoutMetrics struct {
	attempts *prometheus.CounterVec
	verify   *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by final state.",
	}, []string{"state"})
	verify := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_verify_duration_seconds",
		Help:    "Latency of backend payment verification calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	reg.MustRegister(attempts, verify)
	return &CheckoutMetrics{attempts: attempts, verify: verify}
}

// IncAttempt counts an attempt that ended in the named state.
func (c *CheckoutMetrics) IncAttempt(state string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(state)).Inc()
}

// ObserveVerify records the duration of one verification call.
func (c *CheckoutMetrics) ObserveVerify(provider string, duration time.Duration) {
	if c == nil || c.verify == nil {
		return
	}
	c.verify.WithLabelValues(normalizeLabel(provider)).Observe(duration.Seconds())
}

// PollingMetrics records order-status polling activity.
type PollingMetrics struct {
	ticks      prometheus.Counter
	tickErrors prometheus.Counter
	resolved   prometheus.Counter
	timeouts   prometheus.Counter
}

// NewPollingMetrics registers the polling metrics on the provided registerer.
func NewPollingMetrics(reg prometheus.Registerer) *PollingMetrics {
	if reg == nil {
		return &PollingMetrics{}
	}
	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_poll_ticks_total",
		Help: "Order status fetches issued by polling sessions.",
	})
	tickErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_poll_tick_errors_total",
		Help: "Poll ticks that failed and were swallowed.",
	})
	resolved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_poll_resolved_total",
		Help: "Polling sessions that observed a non-pending payment status.",
	})
	timeouts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_poll_timeouts_total",
		Help: "Polling sessions that exhausted their wall-clock budget.",
	})
	reg.MustRegister(ticks, tickErrors, resolved, timeouts)
	return &PollingMetrics{ticks: ticks, tickErrors: tickErrors, resolved: resolved, timeouts: timeouts}
}

func (p *PollingMetrics) IncTick() {
	if p == nil || p.ticks == nil {
		return
	}
	p.ticks.Inc()
}

func (p *PollingMetrics) IncTickError() {
	if p == nil || p.tickErrors == nil {
		return
	}
	p.tickErrors.Inc()
}

func (p *PollingMetrics) IncResolved() {
	if p == nil || p.resolved == nil {
		return
	}
	p.resolved.Inc()
}

func (p *PollingMetrics) IncTimeout() {
	if p == nil || p.timeouts == nil {
		return
	}
	p.timeouts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
