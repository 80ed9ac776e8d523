package payment

import (
	"fmt"
	"time"

	"github.com/veloramarket/storefront-checkout/internal/orders"
	"github.com/veloramarket/storefront-checkout/pkg/enums"
)

// MaxAttempts is the client-known retry ceiling. The backend increments
// payment_attempts on every retry; once the counter reaches this value the
// retry surface disappears.
const MaxAttempts = 3

// ExpiredRedirectPath is where the storefront must hard-navigate when a
// payment session has expired. This is a forced redirect, not a banner.
const ExpiredRedirectPath = "/checkout/expired"

// UIState names the payment surface the storefront should render.
type UIState string

const (
	StateNone             UIState = "none"
	StateRefundedReadOnly UIState = "refunded-readonly"
	StatePendingRetriable UIState = "pending-retriable"
	StateFailedRetriable  UIState = "failed-retriable"
	StateBlockedExceeded  UIState = "blocked-exceeded"
	StateExpiredRedirect  UIState = "expired-redirect"
)

// Classification is the full render instruction for the payment surface.
type Classification struct {
	State        UIState    `json:"state"`
	AttemptText  string     `json:"attempt_text,omitempty"`
	LastFailedAt *time.Time `json:"last_failed_at,omitempty"`
	Redirect     string     `json:"redirect,omitempty"`
}

// Retriable reports whether the state carries a retry action.
func (c Classification) Retriable() bool {
	return c.State == StatePendingRetriable || c.State == StateFailedRetriable
}

// Classify maps an order's payment axis to a UI state. The branch order is
// load-bearing: expired pre-empts everything because it forces navigation
// away, and refunded pre-empts the attempts ceiling so a refunded order can
// never grow a retry button.
func Classify(order *orders.Order) Classification {
	if order == nil {
		return Classification{State: StateNone}
	}

	switch {
	case order.PaymentStatus == enums.PaymentStatusExpired:
		return Classification{State: StateExpiredRedirect, Redirect: ExpiredRedirectPath}

	case order.PaymentStatus == enums.PaymentStatusRefunded:
		return Classification{State: StateRefundedReadOnly}

	case order.PaymentStatus == enums.PaymentStatusPaid || order.PaymentMethod.IsCOD():
		return Classification{State: StateNone}

	case order.PaymentAttempts >= MaxAttempts:
		return Classification{State: StateBlockedExceeded}

	case order.PaymentStatus == enums.PaymentStatusPending:
		return retriable(StatePendingRetriable, order)

	case order.PaymentStatus == enums.PaymentStatusFailed:
		return retriable(StateFailedRetriable, order)

	default:
		return Classification{State: StateNone}
	}
}

func retriable(state UIState, order *orders.Order) Classification {
	return Classification{
		State:        state,
		AttemptText:  fmt.Sprintf("Attempt %d of %d", order.PaymentAttempts, MaxAttempts),
		LastFailedAt: order.LastPaymentFailedAt,
	}
}
