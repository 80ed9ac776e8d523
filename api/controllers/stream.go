package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veloramarket/storefront-checkout/api/responses"
	"github.com/veloramarket/storefront-checkout/internal/orders"
	"github.com/veloramarket/storefront-checkout/internal/payment"
	"github.com/veloramarket/storefront-checkout/internal/polling"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
)

type streamEvent struct {
	Order     *orders.Order          `json:"order,omitempty"`
	PaymentUI payment.Classification `json:"payment_ui"`
	TimedOut  bool                   `json:"timed_out,omitempty"`
}

// OrderStatusStream handles GET /api/v1/orders/{orderId}/status/stream. It
// runs one polling session for the connection and pushes each observed
// order state as a server-sent event; the stream ends with a "resolved" or
// "timeout" event, or silently when the client disconnects.
func OrderStatusStream(ctrl *polling.Controller, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "polling unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		send := func(event string, payload streamEvent) {
			data, err := json.Marshal(payload)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "event: %s\n", event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}

		result, err := ctrl.Run(r.Context(), chi.URLParam(r, "orderId"), polling.Callbacks{
			Tick: func(order *orders.Order) {
				send("status", streamEvent{Order: order, PaymentUI: payment.Classify(order)})
			},
		})
		if err != nil {
			// Client went away; nothing left to write.
			return
		}

		if result.TimedOut {
			send("timeout", streamEvent{TimedOut: true, PaymentUI: payment.Classification{State: payment.StateNone}})
			return
		}
		send("resolved", streamEvent{Order: result.Order, PaymentUI: payment.Classify(result.Order)})
	}
}
