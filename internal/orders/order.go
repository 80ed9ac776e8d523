package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/veloramarket/storefront-checkout/pkg/enums"
	"github.com/veloramarket/storefront-checkout/pkg/types"
)

// Order is a read replica of the backend's order record. The backend owns
// every field; this service never mutates an order except through backend
// calls.
type Order struct {
	ID                  string                `json:"id"`
	Status              enums.OrderStatus     `json:"status"`
	PaymentStatus       enums.PaymentStatus   `json:"payment_status"`
	PaymentMethod       enums.PaymentMethod   `json:"payment_method"`
	PaymentAttempts     int                   `json:"payment_attempts"`
	LastPaymentFailedAt *time.Time            `json:"last_payment_failed_at,omitempty"`
	Total               decimal.Decimal       `json:"total"`
	Items               []Item                `json:"items"`
	Shipping            types.ShippingAddress `json:"shipping"`
}

// Item is display data only. Kind distinguishes regular catalog pieces
// from thrift finds and combo outfit sets.
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind,omitempty"`
	Size      string          `json:"size,omitempty"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// PaymentResolved reports whether polling can stop for this order.
func (o *Order) PaymentResolved() bool {
	if o == nil {
		return false
	}
	return o.PaymentStatus != enums.PaymentStatusPending
}
