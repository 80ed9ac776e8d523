package gateway

import (
	"context"
	"strings"
	"sync"

	"github.com/veloramarket/storefront-checkout/internal/orders"
	"github.com/veloramarket/storefront-checkout/pkg/config"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
)

// OrderCreator is the backend call that mints a provider-side order.
type OrderCreator interface {
	CreateGatewayOrder(ctx context.Context, provider, orderID string) (*orders.GatewayOrder, error)
}

// HostedBridge drives a widget-style provider (Razorpay-shaped): the backend
// creates the provider order and the storefront opens the widget with the
// returned key, order id and amount.
type HostedBridge struct {
	backend OrderCreator
	cfg     config.GatewayConfig
	logg    *logger.Logger

	loadOnce sync.Once
	ready    bool
}

func NewHostedBridge(backend OrderCreator, cfg config.GatewayConfig, logg *logger.Logger) *HostedBridge {
	return &HostedBridge{backend: backend, cfg: cfg, logg: logg}
}

func (b *HostedBridge) Provider() string {
	return config.ProviderRazorpay
}

// EnsureReady validates the bridge wiring once. There is no SDK to load
// server-side; readiness means the backend client and a currency exist.
func (b *HostedBridge) EnsureReady(ctx context.Context) bool {
	b.loadOnce.Do(func() {
		if b.backend == nil {
			b.warn(ctx, "gateway.load_failed: no backend client")
			return
		}
		if strings.TrimSpace(b.cfg.Currency) == "" {
			b.warn(ctx, "gateway.load_failed: currency not configured")
			return
		}
		b.ready = true
	})
	return b.ready
}

func (b *HostedBridge) Open(ctx context.Context, order *orders.Order, prefill Prefill) (*CheckoutIntent, error) {
	if !b.EnsureReady(ctx) {
		return nil, errUnavailable()
	}
	if b.cfg.OpenTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.OpenTimeout)
		defer cancel()
	}

	gw, err := b.backend.CreateGatewayOrder(ctx, b.Provider(), order.ID)
	if err != nil {
		return nil, err
	}

	return &CheckoutIntent{
		Provider:       b.Provider(),
		Key:            gw.Key,
		GatewayOrderID: gw.GatewayOrderID,
		AmountMinor:    gw.AmountMinor,
		Currency:       gw.Currency,
		Prefill:        prefill,
		Notes:          map[string]string{"order_id": order.ID},
		Theme:          Theme{Color: b.cfg.ThemeColor},
	}, nil
}

func (b *HostedBridge) warn(ctx context.Context, msg string) {
	if b.logg != nil {
		b.logg.Warn(ctx, msg)
	}
}

func errUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeGatewayUnavailable, "unable to load the payment gateway")
}
