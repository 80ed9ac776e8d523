package enums

import "fmt"

// PaymentStatus tracks the payment axis of an order, independent of fulfillment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusExpired  PaymentStatus = "expired"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusExpired,
	PaymentStatusRefunded,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// Terminal reports whether no further payment transition is expected
// without a brand-new order. Paid counts: polling stops once paid.
func (p PaymentStatus) Terminal() bool {
	switch p {
	case PaymentStatusPaid, PaymentStatusExpired, PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

// Retriable reports whether the payment can still be attempted again.
func (p PaymentStatus) Retriable() bool {
	return p == PaymentStatusPending || p == PaymentStatusFailed
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
