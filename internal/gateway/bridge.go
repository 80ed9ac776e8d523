// Package gateway opens hosted payment sessions with the configured
// provider. A Bridge is loaded once per process; if that load fails the
// bridge stays unavailable and checkout surfaces a retriable error instead
// of crashing mid-payment.
package gateway

import (
	"context"

	"github.com/veloramarket/storefront-checkout/internal/orders"
)

// Bridge abstracts one payment provider.
type Bridge interface {
	// Provider returns the provider slug ("razorpay", "stripe").
	Provider() string
	// EnsureReady performs one-time initialization and reports whether the
	// provider can be used. The first result is cached for the life of the
	// process: a failed load never flips to ready later.
	EnsureReady(ctx context.Context) bool
	// Open creates a provider-side payment session for the order and
	// returns everything the storefront needs to hand control to the
	// provider's checkout surface.
	Open(ctx context.Context, order *orders.Order, prefill Prefill) (*CheckoutIntent, error)
}

// Prefill seeds the provider's checkout form.
type Prefill struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

// Theme carries storefront branding into the provider widget.
type Theme struct {
	Color string `json:"color,omitempty"`
}

// CheckoutIntent is the render instruction for the provider handoff. Widget
// providers consume Key/GatewayOrderID/AmountMinor; hosted-page providers
// consume URL.
type CheckoutIntent struct {
	Provider       string            `json:"provider"`
	Key            string            `json:"key,omitempty"`
	GatewayOrderID string            `json:"gateway_order_id"`
	AmountMinor    int64             `json:"amount_minor"`
	Currency       string            `json:"currency"`
	Prefill        Prefill           `json:"prefill"`
	Notes          map[string]string `json:"notes,omitempty"`
	Theme          Theme             `json:"theme"`
	URL            string            `json:"url,omitempty"`
}

// Callback is what the provider hands back after the shopper completes (or
// abandons) payment. The signature is opaque here; only the backend can
// check it.
type Callback struct {
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}
