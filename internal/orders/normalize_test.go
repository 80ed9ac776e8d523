package orders

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veloramarket/storefront-checkout/pkg/enums"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
)

const validOrderPayload = `{
	"data": {
		"id": "ord-123",
		"status": "pending",
		"payment_status": "failed",
		"payment_method": "razorpay",
		"payment_attempts": 2,
		"last_payment_failed_at": "2026-08-01T10:30:00Z",
		"total": "1849.50",
		"items": [
			{"product_id": "p-1", "name": "Linen shirt", "kind": "catalog", "size": "M", "qty": 1, "unit_price": "1199.50"},
			{"product_id": "p-2", "name": "Vintage denim jacket", "kind": "thrift", "qty": 1, "unit_price": "650.00"}
		],
		"shipping": {"name": "A Buyer", "line1": "12 Lane", "city": "Pune", "state": "MH", "postal_code": "411001", "country": "IN"}
	}
}`

func TestNormalizeAcceptsTheOneContractShape(t *testing.T) {
	order, err := Normalize([]byte(validOrderPayload))
	require.NoError(t, err)

	assert.Equal(t, "ord-123", order.ID)
	assert.Equal(t, enums.PaymentStatusFailed, order.PaymentStatus)
	assert.Equal(t, 2, order.PaymentAttempts)
	require.NotNil(t, order.LastPaymentFailedAt)
	assert.Equal(t, "1849.5", order.Total.String())
	require.Len(t, order.Items, 2)
	assert.Equal(t, "thrift", order.Items[1].Kind)
	assert.Equal(t, "Pune", order.Shipping.City)
}

func TestNormalizeFailsLoudlyOnOtherShapes(t *testing.T) {
	cases := map[string]string{
		"bare order, no envelope": `{"id":"ord-1","status":"pending","payment_status":"pending"}`,
		"null data":               `{"data": null}`,
		"missing id":              `{"data": {"status":"pending","payment_status":"pending"}}`,
		"unknown payment status":  strings.Replace(validOrderPayload, `"failed"`, `"settled"`, 1),
		"unknown order status":    strings.Replace(validOrderPayload, `"status": "pending"`, `"status": "archived"`, 1),
		"bad timestamp":           strings.Replace(validOrderPayload, "2026-08-01T10:30:00Z", "yesterday", 1),
		"not json":                `<html>`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize([]byte(payload))
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
		})
	}
}

func TestNormalizeAllowsNullLastFailure(t *testing.T) {
	payload := strings.Replace(validOrderPayload, `"2026-08-01T10:30:00Z"`, "null", 1)
	order, err := Normalize([]byte(payload))
	require.NoError(t, err)
	assert.Nil(t, order.LastPaymentFailedAt)
}
