package orders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/veloramarket/storefront-checkout/pkg/enums"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
	"github.com/veloramarket/storefront-checkout/pkg/types"
)

// The backend returns exactly one envelope shape. Anything else is a
// contract violation and surfaces as a dependency error instead of being
// shape-sniffed into silence.
type orderEnvelope struct {
	Data *orderWire `json:"data"`
}

type orderWire struct {
	ID                  string           `json:"id"`
	Status              string           `json:"status"`
	PaymentStatus       string           `json:"payment_status"`
	PaymentMethod       string           `json:"payment_method"`
	PaymentAttempts     int              `json:"payment_attempts"`
	LastPaymentFailedAt *string          `json:"last_payment_failed_at"`
	Total               decimal.Decimal  `json:"total"`
	Items               []itemWire       `json:"items"`
	Shipping            itemShippingWire `json:"shipping"`
}

type itemWire struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Size      string          `json:"size"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type itemShippingWire struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// Normalize decodes a backend order envelope into the read-replica model.
func Normalize(payload []byte) (*Order, error) {
	var envelope orderEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order payload")
	}
	if envelope.Data == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order payload missing data envelope")
	}
	return fromWire(envelope.Data)
}

func fromWire(wire *orderWire) (*Order, error) {
	if wire.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order payload missing id")
	}

	status, err := enums.ParseOrderStatus(wire.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order payload status")
	}
	paymentStatus, err := enums.ParsePaymentStatus(wire.PaymentStatus)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order payload payment status")
	}
	if wire.PaymentAttempts < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order payload has negative payment attempts")
	}

	var lastFailed *time.Time
	if wire.LastPaymentFailedAt != nil && *wire.LastPaymentFailedAt != "" {
		parsed, parseErr := time.Parse(time.RFC3339, *wire.LastPaymentFailedAt)
		if parseErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, parseErr,
				fmt.Sprintf("order payload last_payment_failed_at %q", *wire.LastPaymentFailedAt))
		}
		lastFailed = &parsed
	}

	items := make([]Item, 0, len(wire.Items))
	for _, item := range wire.Items {
		items = append(items, Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Kind:      item.Kind,
			Size:      item.Size,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
		})
	}

	return &Order{
		ID:                  wire.ID,
		Status:              status,
		PaymentStatus:       paymentStatus,
		PaymentMethod:       enums.PaymentMethod(wire.PaymentMethod),
		PaymentAttempts:     wire.PaymentAttempts,
		LastPaymentFailedAt: lastFailed,
		Total:               wire.Total,
		Items:               items,
		Shipping: types.ShippingAddress{
			Name:       wire.Shipping.Name,
			Line1:      wire.Shipping.Line1,
			Line2:      wire.Shipping.Line2,
			City:       wire.Shipping.City,
			State:      wire.Shipping.State,
			PostalCode: wire.Shipping.PostalCode,
			Country:    wire.Shipping.Country,
			Phone:      wire.Shipping.Phone,
		},
	}, nil
}
