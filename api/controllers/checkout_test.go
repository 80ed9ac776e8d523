package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/veloramarket/storefront-checkout/api/middleware"
	checkoutsvc "github.com/veloramarket/storefront-checkout/internal/checkout"
	"github.com/veloramarket/storefront-checkout/internal/gateway"
	"github.com/veloramarket/storefront-checkout/internal/orders"
	"github.com/veloramarket/storefront-checkout/pkg/enums"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
	"github.com/veloramarket/storefront-checkout/pkg/types"
)

type stubCheckoutBackend struct {
	verifyErr error
}

func (b *stubCheckoutBackend) CreateOrder(_ context.Context, input orders.CreateOrderInput) (*orders.Order, error) {
	return &orders.Order{
		ID:            "ord-1",
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMethod: enums.PaymentMethod(input.PaymentMethod),
		Total:         decimal.RequireFromString("999.00"),
	}, nil
}

func (b *stubCheckoutBackend) VerifyPayment(context.Context, string, orders.VerifyInput) (*orders.Order, error) {
	if b.verifyErr != nil {
		return nil, b.verifyErr
	}
	return &orders.Order{
		ID:            "ord-1",
		Status:        enums.OrderStatusConfirmed,
		PaymentStatus: enums.PaymentStatusPaid,
		PaymentMethod: "razorpay",
		Total:         decimal.RequireFromString("999.00"),
	}, nil
}

type stubCheckoutBridge struct{}

func (stubCheckoutBridge) Provider() string                  { return "razorpay" }
func (stubCheckoutBridge) EnsureReady(context.Context) bool  { return true }
func (stubCheckoutBridge) Open(context.Context, *orders.Order, gateway.Prefill) (*gateway.CheckoutIntent, error) {
	return &gateway.CheckoutIntent{Provider: "razorpay", Key: "rzp_test_abc", GatewayOrderID: "order_xyz", AmountMinor: 99900, Currency: "INR"}, nil
}

func newCheckoutService(t *testing.T, backend checkoutsvc.Backend) *checkoutsvc.Service {
	t.Helper()
	svc, err := checkoutsvc.NewService(backend, stubCheckoutBridge{}, checkoutsvc.NewLocalGuard(), checkoutsvc.NewSessionStore(), nil, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

const checkoutBody = `{
	"items": [{"product_id": "p-1", "qty": 1}],
	"shipping": {"name": "A Buyer", "line1": "12 Lane", "city": "Pune", "state": "MH", "postal_code": "411001", "country": "IN"},
	"payment_method": "razorpay",
	"contact": "9999999999"
}`

func checkoutRouterFor(svc *checkoutsvc.Service) chi.Router {
	r := chi.NewRouter()
	r.Post("/api/v1/checkout", CheckoutSubmit(svc, nil))
	r.Get("/api/v1/checkout/{sessionId}", CheckoutSession(svc, nil))
	r.Post("/api/v1/checkout/{sessionId}/gateway/success", GatewaySuccess(svc, nil))
	r.Post("/api/v1/checkout/{sessionId}/gateway/failure", GatewayFailure(svc, nil))
	return r
}

func asCustomer(req *http.Request, customerID string) *http.Request {
	return req.WithContext(middleware.WithCustomerID(req.Context(), customerID))
}

func submitCheckout(t *testing.T, router chi.Router, customerID string) map[string]any {
	t.Helper()
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody)), customerID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return envelope.Data.(map[string]any)
}

func TestCheckoutSubmitReturnsSessionAndIntent(t *testing.T) {
	router := checkoutRouterFor(newCheckoutService(t, &stubCheckoutBackend{}))
	data := submitCheckout(t, router, "cust-1")

	session := data["session"].(map[string]any)
	if session["state"] != "awaiting_gateway" {
		t.Fatalf("unexpected state %v", session["state"])
	}
	intent := data["intent"].(map[string]any)
	if intent["gateway_order_id"] != "order_xyz" {
		t.Fatalf("unexpected intent %v", intent)
	}
}

func TestCheckoutSubmitRejectsInvalidBody(t *testing.T) {
	router := checkoutRouterFor(newCheckoutService(t, &stubCheckoutBackend{}))

	req := asCustomer(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"items": []}`)), "cust-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCheckoutDoubleSubmitConflicts(t *testing.T) {
	router := checkoutRouterFor(newCheckoutService(t, &stubCheckoutBackend{}))
	submitCheckout(t, router, "cust-1")

	req := asCustomer(httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody)), "cust-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), string(pkgerrors.CodeCheckoutInFlight)) {
		t.Fatalf("expected in-flight code, got %s", rec.Body.String())
	}
}

func TestGatewaySuccessCompletesCheckout(t *testing.T) {
	router := checkoutRouterFor(newCheckoutService(t, &stubCheckoutBackend{}))
	data := submitCheckout(t, router, "cust-1")
	sessionID := data["session"].(map[string]any)["id"].(string)

	body := `{"gateway_order_id":"order_xyz","gateway_payment_id":"pay_1","signature":"sig"}`
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+sessionID+"/gateway/success", strings.NewReader(body)), "cust-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	payload := envelope.Data.(map[string]any)
	if payload["session"].(map[string]any)["state"] != "done" {
		t.Fatalf("unexpected session payload %v", payload["session"])
	}
	if payload["order"].(map[string]any)["payment_status"] != "paid" {
		t.Fatalf("unexpected order payload %v", payload["order"])
	}
}

func TestGatewaySuccessWithVerificationOutageReturnsAccepted(t *testing.T) {
	backend := &stubCheckoutBackend{verifyErr: pkgerrors.New(pkgerrors.CodeDependency, "verify down")}
	router := checkoutRouterFor(newCheckoutService(t, backend))
	data := submitCheckout(t, router, "cust-1")
	sessionID := data["session"].(map[string]any)["id"].(string)

	body := `{"gateway_order_id":"order_xyz","gateway_payment_id":"pay_1","signature":"sig"}`
	req := asCustomer(httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+sessionID+"/gateway/success", strings.NewReader(body)), "cust-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), string(pkgerrors.CodePaymentPending)) {
		t.Fatalf("expected pending-review code, got %s", rec.Body.String())
	}
}

func TestGatewayFailureEndsAttempt(t *testing.T) {
	router := checkoutRouterFor(newCheckoutService(t, &stubCheckoutBackend{}))
	data := submitCheckout(t, router, "cust-1")
	sessionID := data["session"].(map[string]any)["id"].(string)

	req := asCustomer(httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+sessionID+"/gateway/failure", strings.NewReader(`{"reason":"dismissed"}`)), "cust-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.(map[string]any)["state"] != "failed" {
		t.Fatalf("unexpected session %v", envelope.Data)
	}
}

func TestForeignSessionReadsAsNotFound(t *testing.T) {
	router := checkoutRouterFor(newCheckoutService(t, &stubCheckoutBackend{}))
	data := submitCheckout(t, router, "cust-1")
	sessionID := data["session"].(map[string]any)["id"].(string)

	req := asCustomer(httptest.NewRequest(http.MethodGet, "/api/v1/checkout/"+sessionID, nil), "cust-2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign session, got %d", rec.Code)
	}
}
