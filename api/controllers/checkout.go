package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veloramarket/storefront-checkout/api/middleware"
	"github.com/veloramarket/storefront-checkout/api/responses"
	"github.com/veloramarket/storefront-checkout/api/validators"
	checkoutsvc "github.com/veloramarket/storefront-checkout/internal/checkout"
	"github.com/veloramarket/storefront-checkout/internal/gateway"
	"github.com/veloramarket/storefront-checkout/internal/orders"
	"github.com/veloramarket/storefront-checkout/pkg/enums"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
	"github.com/veloramarket/storefront-checkout/pkg/types"
)

type checkoutRequest struct {
	Items         []checkoutItem        `json:"items" validate:"required,min=1,dive"`
	Shipping      types.ShippingAddress `json:"shipping" validate:"required"`
	PaymentMethod string                `json:"payment_method" validate:"required"`
	Contact       string                `json:"contact,omitempty"`
}

type checkoutItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int    `json:"qty" validate:"required,min=1"`
}

// CheckoutSubmit handles POST /api/v1/checkout.
func CheckoutSubmit(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		customerID := middleware.CustomerIDFromContext(r.Context())
		if customerID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := payload.Shipping.Validate(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orders.CreateOrderItem, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, orders.CreateOrderItem{ProductID: item.ProductID, Qty: item.Qty})
		}

		result, err := svc.Submit(r.Context(), checkoutsvc.SubmitInput{
			CustomerID:    customerID,
			Items:         items,
			Shipping:      payload.Shipping,
			PaymentMethod: enums.PaymentMethod(payload.PaymentMethod),
			Prefill: gateway.Prefill{
				Name:    middleware.CustomerNameFromContext(r.Context()),
				Email:   middleware.CustomerEmailFromContext(r.Context()),
				Contact: payload.Contact,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutSession handles GET /api/v1/checkout/{sessionId}.
func CheckoutSession(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := ownedSession(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// GatewaySuccess handles POST /api/v1/checkout/{sessionId}/gateway/success.
// The storefront posts the provider callback here; the order is only
// trusted after the backend verifies the signature.
func GatewaySuccess(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := ownedSession(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload gateway.Callback
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, updated, err := svc.HandleGatewaySuccess(r.Context(), session.ID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"session": updated,
			"order":   order,
		})
	}
}

type gatewayFailureRequest struct {
	Reason string `json:"reason,omitempty"`
}

// GatewayFailure handles POST /api/v1/checkout/{sessionId}/gateway/failure.
func GatewayFailure(svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := ownedSession(svc, r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload gatewayFailureRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.HandleGatewayFailure(r.Context(), session.ID, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// ownedSession loads the session and checks the caller owns it. Foreign
// sessions read as not found so ids cannot be probed.
func ownedSession(svc *checkoutsvc.Service, r *http.Request) (*checkoutsvc.Session, error) {
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable")
	}
	sessionID := chi.URLParam(r, "sessionId")
	session, ok := svc.Session(sessionID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	if session.CustomerID != middleware.CustomerIDFromContext(r.Context()) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	return session, nil
}
