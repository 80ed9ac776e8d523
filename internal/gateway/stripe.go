package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"

	"github.com/veloramarket/storefront-checkout/internal/orders"
	"github.com/veloramarket/storefront-checkout/pkg/config"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
)

const (
	stripeEnvTest = "test"
	stripeEnvLive = "live"
)

var minorUnits = decimal.NewFromInt(100)

// StripeBridge drives Stripe's hosted checkout page. Unlike the widget
// bridge it owns the provider session itself: the backend only learns about
// the payment at verification time.
type StripeBridge struct {
	cfg  config.GatewayConfig
	logg *logger.Logger

	loadOnce sync.Once
	ready    bool

	newSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewStripeBridge(cfg config.GatewayConfig, logg *logger.Logger) *StripeBridge {
	return &StripeBridge{cfg: cfg, logg: logg, newSession: session.New}
}

func (b *StripeBridge) Provider() string {
	return config.ProviderStripe
}

// EnsureReady validates the API key against the configured environment and
// sets the package key exactly once.
func (b *StripeBridge) EnsureReady(ctx context.Context) bool {
	b.loadOnce.Do(func() {
		key := strings.TrimSpace(b.cfg.StripeAPIKey)
		if key == "" {
			b.warn(ctx, "gateway.load_failed: stripe api key missing")
			return
		}
		if err := validateStripeKey(b.cfg.Environment(), key); err != nil {
			b.warn(ctx, "gateway.load_failed: "+err.Error())
			return
		}
		stripe.Key = key
		b.ready = true
		if b.logg != nil {
			b.logg.Info(ctx, fmt.Sprintf("stripe bridge initialized (%s)", b.cfg.Environment()))
		}
	})
	return b.ready
}

func (b *StripeBridge) Open(ctx context.Context, order *orders.Order, prefill Prefill) (*CheckoutIntent, error) {
	if !b.EnsureReady(ctx) {
		return nil, errUnavailable()
	}

	currency := strings.ToLower(strings.TrimSpace(b.cfg.Currency))
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(order.ID),
		SuccessURL:        stripe.String(b.cfg.StorefrontURL + b.cfg.SuccessPath),
		CancelURL:         stripe.String(b.cfg.StorefrontURL + b.cfg.PendingPath),
	}
	if prefill.Email != "" {
		params.CustomerEmail = stripe.String(prefill.Email)
	}
	for _, item := range order.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Qty)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.UnitPrice.Mul(minorUnits).IntPart()),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}

	sess, err := b.newSession(params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating stripe checkout session")
	}

	return &CheckoutIntent{
		Provider:       b.Provider(),
		GatewayOrderID: sess.ID,
		AmountMinor:    order.Total.Mul(minorUnits).IntPart(),
		Currency:       strings.ToUpper(currency),
		Prefill:        prefill,
		Theme:          Theme{Color: b.cfg.ThemeColor},
		URL:            sess.URL,
	}, nil
}

func (b *StripeBridge) warn(ctx context.Context, msg string) {
	if b.logg != nil {
		b.logg.Warn(ctx, msg)
	}
}

func validateStripeKey(env, key string) error {
	switch env {
	case stripeEnvTest:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", stripeEnvTest)
	case stripeEnvLive:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", stripeEnvLive)
	default:
		return fmt.Errorf("stripe environment must be %q or %q", stripeEnvTest, stripeEnvLive)
	}
}
