package enums

// CheckoutState is the per-attempt state machine for a single checkout.
type CheckoutState string

const (
	CheckoutStateIdle            CheckoutState = "idle"
	CheckoutStateCreatingOrder   CheckoutState = "creating_order"
	CheckoutStateAwaitingGateway CheckoutState = "awaiting_gateway"
	CheckoutStateVerifying       CheckoutState = "verifying"
	CheckoutStateDone            CheckoutState = "done"
	CheckoutStateFailed          CheckoutState = "failed"
	CheckoutStatePendingReview   CheckoutState = "pending_review"
)

func (c CheckoutState) String() string {
	return string(c)
}

// Terminal reports whether the attempt can no longer progress.
// Failed is terminal for the attempt but permits a fresh attempt.
func (c CheckoutState) Terminal() bool {
	switch c {
	case CheckoutStateDone, CheckoutStateFailed, CheckoutStatePendingReview:
		return true
	default:
		return false
	}
}
