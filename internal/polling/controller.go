package polling

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/veloramarket/storefront-checkout/internal/orders"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
	"github.com/veloramarket/storefront-checkout/pkg/metrics"
)

const (
	// DefaultInterval is the fixed delay between status fetches.
	DefaultInterval = 5 * time.Second
	// DefaultBudget bounds a polling session's wall-clock lifetime,
	// measured from session start, not from last activity.
	DefaultBudget = 3 * time.Minute
)

// Fetcher issues one read of an order's current state.
type Fetcher interface {
	FetchOrder(ctx context.Context, id string) (*orders.Order, error)
}

// Options tune one controller. Zero values take the defaults above.
type Options struct {
	Interval time.Duration
	Budget   time.Duration
}

// Callbacks receive polling progress. Resolved fires exactly once, with the
// first fetched order whose payment status is no longer pending; after that
// no further ticks occur. Tick fires on every successful fetch, including
// the resolving one.
type Callbacks struct {
	Resolved func(*orders.Order)
	Tick     func(*orders.Order)
}

// Result describes how a polling session ended.
type Result struct {
	// Order is the resolving order, nil when the session timed out or
	// was cancelled.
	Order *orders.Order
	// TimedOut is set when the wall-clock budget ran out while the
	// payment was still pending. The session ends silently: Resolved is
	// not invoked, and the caller renders the timeout surface.
	TimedOut bool
	// Ticks counts fetches attempted, including failed ones.
	Ticks int
}

// Controller runs fixed-delay polling sessions against the backend.
//
// Ticks are strictly sequential: the next delay starts only after the
// in-flight fetch returns, so a slow response can never overlap the next
// request. Cancellation rides on the context; cancelling it is the single
// "stop everything" switch and is always safe to do twice.
type Controller struct {
	fetch   Fetcher
	opts    Options
	logg    *logger.Logger
	metrics *metrics.PollingMetrics
}

// New builds a Controller. fetch is required.
func New(fetch Fetcher, opts Options, logg *logger.Logger, m *metrics.PollingMetrics) (*Controller, error) {
	if fetch == nil {
		return nil, errors.New("fetcher required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Budget <= 0 {
		opts.Budget = DefaultBudget
	}
	return &Controller{fetch: fetch, opts: opts, logg: logg, metrics: m}, nil
}

// Run polls until the order's payment status leaves pending, the budget is
// exhausted, or ctx is cancelled. It blocks; callers that need a background
// session run it in a goroutine and cancel the context on teardown.
//
// Fetch errors are swallowed by design: a failed tick logs, counts, and
// waits for the next interval. Polling must never take the page down.
func (c *Controller) Run(ctx context.Context, orderID string, cb Callbacks) (Result, error) {
	if strings.TrimSpace(orderID) == "" {
		return Result{}, errors.New("order id required")
	}

	ctx = c.logCtx(ctx, orderID)
	start := time.Now()
	result := Result{}

	timer := time.NewTimer(c.opts.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-timer.C:
		}

		if time.Since(start) > c.opts.Budget {
			c.metrics.IncTimeout()
			if c.logg != nil {
				c.logg.Info(ctx, "polling.budget_exhausted")
			}
			result.TimedOut = true
			return result, nil
		}

		result.Ticks++
		c.metrics.IncTick()

		order, err := c.fetch.FetchOrder(ctx, orderID)
		if err != nil {
			c.metrics.IncTickError()
			if c.logg != nil {
				c.logg.Warn(c.logg.WithField(ctx, "tick", result.Ticks), "polling.tick_failed: "+err.Error())
			}
			timer.Reset(c.opts.Interval)
			continue
		}

		if cb.Tick != nil {
			cb.Tick(order)
		}

		if order.PaymentResolved() {
			c.metrics.IncResolved()
			if c.logg != nil {
				c.logg.Info(c.logg.WithField(ctx, "payment_status", order.PaymentStatus.String()), "polling.resolved")
			}
			if cb.Resolved != nil {
				cb.Resolved(order)
			}
			result.Order = order
			return result, nil
		}

		timer.Reset(c.opts.Interval)
	}
}

func (c *Controller) logCtx(ctx context.Context, orderID string) context.Context {
	if c.logg == nil {
		return ctx
	}
	return c.logg.WithOrderID(ctx, orderID)
}
