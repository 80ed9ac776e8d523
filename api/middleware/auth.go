package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/veloramarket/storefront-checkout/api/responses"
	pkgauth "github.com/veloramarket/storefront-checkout/pkg/auth"
	"github.com/veloramarket/storefront-checkout/pkg/config"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
)

// Auth validates a customer bearer token and seeds the request context with
// the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseCustomerToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxCustomerID, claims.CustomerID.String())
			ctx = context.WithValue(ctx, ctxCustomerEmail, claims.Email)
			ctx = context.WithValue(ctx, ctxCustomerName, claims.Name)

			if logg != nil {
				ctx = logg.WithCustomerID(ctx, claims.CustomerID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
