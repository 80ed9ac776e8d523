package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veloramarket/storefront-checkout/api/responses"
	"github.com/veloramarket/storefront-checkout/internal/orders"
	"github.com/veloramarket/storefront-checkout/internal/payment"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
)

// OrdersService is the slice of the backend client the order endpoints use.
type OrdersService interface {
	FetchOrder(ctx context.Context, id string) (*orders.Order, error)
	CancelOrder(ctx context.Context, id string) (*orders.Order, error)
}

type orderResponse struct {
	Order     *orders.Order          `json:"order"`
	PaymentUI payment.Classification `json:"payment_ui"`
}

// OrderDetail handles GET /api/v1/orders/{orderId}. The response carries
// both the normalized order and the payment surface the storefront should
// render for it.
func OrderDetail(svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		order, err := svc.FetchOrder(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orderResponse{
			Order:     order,
			PaymentUI: payment.Classify(order),
		})
	}
}

// OrderCancel handles POST /api/v1/orders/{orderId}/cancel.
func OrderCancel(svc OrdersService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		order, err := svc.CancelOrder(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orderResponse{
			Order:     order,
			PaymentUI: payment.Classify(order),
		})
	}
}
