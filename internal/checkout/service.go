package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/veloramarket/storefront-checkout/internal/gateway"
	"github.com/veloramarket/storefront-checkout/internal/orders"
	"github.com/veloramarket/storefront-checkout/pkg/enums"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
	"github.com/veloramarket/storefront-checkout/pkg/metrics"
	"github.com/veloramarket/storefront-checkout/pkg/types"
)

// Backend is the slice of the commerce API the checkout flow needs.
type Backend interface {
	CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*orders.Order, error)
	VerifyPayment(ctx context.Context, provider string, input orders.VerifyInput) (*orders.Order, error)
}

// Service orchestrates one checkout attempt end to end: latch, order
// creation, gateway handoff, verification.
type Service struct {
	backend Backend
	bridge  gateway.Bridge
	guard   Guard
	store   *SessionStore
	trap    NavigationTrap
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
}

func NewService(
	backend Backend,
	bridge gateway.Bridge,
	guard Guard,
	store *SessionStore,
	trap NavigationTrap,
	logg *logger.Logger,
	m *metrics.CheckoutMetrics,
) (*Service, error) {
	if backend == nil || bridge == nil || guard == nil || store == nil {
		return nil, errors.New("backend, bridge, guard and store are required")
	}
	if trap == nil {
		trap = SessionTrap{}
	}
	return &Service{
		backend: backend,
		bridge:  bridge,
		guard:   guard,
		store:   store,
		trap:    trap,
		logg:    logg,
		metrics: m,
	}, nil
}

// SubmitInput is a validated checkout submission.
type SubmitInput struct {
	CustomerID    string
	Items         []orders.CreateOrderItem
	Shipping      types.ShippingAddress
	PaymentMethod enums.PaymentMethod
	Prefill       gateway.Prefill
}

// SubmitResult is what the storefront needs after submit: the session to
// follow, the created order, and the gateway handoff (nil for COD, which
// completes immediately).
type SubmitResult struct {
	Session *Session                `json:"session"`
	Order   *orders.Order           `json:"order"`
	Intent  *gateway.CheckoutIntent `json:"intent,omitempty"`
}

// Submit runs the front half of the attempt. The latch is taken before any
// backend call; a second submit for the same customer while one is in
// flight gets a conflict, not a second order.
//
// The latch is released only when the attempt fails. A successful attempt
// keeps it held so a stale re-submit cannot slip in behind the success;
// the guard's TTL is what eventually clears it.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	ctx = s.logCustomer(ctx, input.CustomerID)

	acquired, err := s.guard.TryAcquire(ctx, input.CustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "acquiring checkout latch")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeCheckoutInFlight, "a checkout is already in progress")
	}

	session := newSession(input.CustomerID)
	s.store.Save(session)
	if err := session.transition(enums.CheckoutStateCreatingOrder); err != nil {
		return nil, err
	}

	order, err := s.backend.CreateOrder(ctx, orders.CreateOrderInput{
		CustomerID:    input.CustomerID,
		Items:         input.Items,
		Shipping:      input.Shipping,
		PaymentMethod: input.PaymentMethod.String(),
	})
	if err != nil {
		s.fail(ctx, session, "order creation failed")
		return nil, err
	}
	session.setOrderID(order.ID)
	ctx = s.logOrder(ctx, order.ID)

	if input.PaymentMethod.IsCOD() {
		if err := session.transition(enums.CheckoutStateDone); err != nil {
			return nil, err
		}
		s.count(enums.CheckoutStateDone)
		s.info(ctx, "checkout.done_cod")
		return &SubmitResult{Session: session.Snapshot(), Order: order}, nil
	}

	// The trap goes up before the provider can take over: from here until
	// a terminal state, back-navigation replays nothing.
	s.trap.Install(session)

	if err := session.transition(enums.CheckoutStateAwaitingGateway); err != nil {
		return nil, err
	}

	intent, err := s.bridge.Open(ctx, order, input.Prefill)
	if err != nil {
		s.trap.Remove(session)
		s.fail(ctx, session, "gateway handoff failed")
		return nil, err
	}
	session.setIntent(intent)

	s.info(ctx, "checkout.awaiting_gateway")
	return &SubmitResult{Session: session.Snapshot(), Order: order, Intent: intent}, nil
}

// HandleGatewaySuccess runs the back half after the provider reports
// success. The provider's word is never trusted: only the backend's
// verification can mark the order paid. An inconclusive verification parks
// the attempt in pending_review with the latch still held.
func (s *Service) HandleGatewaySuccess(ctx context.Context, sessionID string, cb gateway.Callback) (*orders.Order, *Session, error) {
	session, ok := s.store.Get(sessionID)
	if !ok {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	ctx = s.logOrder(s.logCustomer(ctx, session.CustomerID), session.OrderID)

	if err := session.transition(enums.CheckoutStateVerifying); err != nil {
		return nil, session.Snapshot(), err
	}

	start := time.Now()
	order, err := s.backend.VerifyPayment(ctx, s.bridge.Provider(), orders.VerifyInput{
		OrderID:          session.OrderID,
		GatewayOrderID:   cb.GatewayOrderID,
		GatewayPaymentID: cb.GatewayPaymentID,
		Signature:        cb.Signature,
	})
	s.metrics.ObserveVerify(s.bridge.Provider(), time.Since(start))

	if err != nil || order == nil || order.PaymentStatus != enums.PaymentStatusPaid {
		if terr := session.transition(enums.CheckoutStatePendingReview); terr != nil {
			return nil, session.Snapshot(), terr
		}
		s.trap.Remove(session)
		s.count(enums.CheckoutStatePendingReview)
		if s.logg != nil {
			s.logg.Error(ctx, "checkout.verification_inconclusive", err)
		}
		return order, session.Snapshot(), pkgerrors.Wrap(pkgerrors.CodePaymentPending, err,
			"payment received but not yet confirmed")
	}

	if err := session.transition(enums.CheckoutStateDone); err != nil {
		return nil, session.Snapshot(), err
	}
	s.trap.Remove(session)
	s.count(enums.CheckoutStateDone)
	s.info(ctx, "checkout.done")
	return order, session.Snapshot(), nil
}

// HandleGatewayFailure ends the attempt after the shopper abandoned the
// provider surface or the provider reported a hard failure. This is the
// only path that releases the latch: the payment definitively did not
// happen, so a fresh attempt is safe.
func (s *Service) HandleGatewayFailure(ctx context.Context, sessionID, reason string) (*Session, error) {
	session, ok := s.store.Get(sessionID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	ctx = s.logOrder(s.logCustomer(ctx, session.CustomerID), session.OrderID)

	if err := session.transition(enums.CheckoutStateFailed); err != nil {
		return session.Snapshot(), err
	}
	session.setReason(reason)
	s.trap.Remove(session)
	if err := s.guard.Release(ctx, session.CustomerID); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "checkout.latch_release_failed: "+err.Error())
	}
	s.count(enums.CheckoutStateFailed)
	s.info(ctx, "checkout.failed")
	return session.Snapshot(), nil
}

// Session exposes a stored session for status rendering. The returned copy
// is detached from the live attempt.
func (s *Service) Session(id string) (*Session, bool) {
	session, ok := s.store.Get(id)
	if !ok {
		return nil, false
	}
	return session.Snapshot(), true
}

func (s *Service) fail(ctx context.Context, session *Session, reason string) {
	if err := session.transition(enums.CheckoutStateFailed); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "checkout.fail_transition: "+err.Error())
	}
	session.setReason(reason)
	if err := s.guard.Release(ctx, session.CustomerID); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "checkout.latch_release_failed: "+err.Error())
	}
	s.count(enums.CheckoutStateFailed)
}

func (s *Service) count(state enums.CheckoutState) {
	s.metrics.IncAttempt(state.String())
}

func (s *Service) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

func (s *Service) logCustomer(ctx context.Context, customerID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithCustomerID(ctx, customerID)
}

func (s *Service) logOrder(ctx context.Context, orderID string) context.Context {
	if s.logg == nil || orderID == "" {
		return ctx
	}
	return s.logg.WithOrderID(ctx, orderID)
}
