package controllers

import (
	"context"
	"net/http"

	"github.com/veloramarket/storefront-checkout/api/responses"
	"github.com/veloramarket/storefront-checkout/pkg/config"
	pkgerrors "github.com/veloramarket/storefront-checkout/pkg/errors"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
)

const envHeader = "X-Velora-Env"

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every wired dependency answers.
func HealthReady(cfg *config.Config, logg *logger.Logger, backend, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]Pinger{
			"backend": backend,
			"redis":   cache,
		}
		for name, dep := range checks {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
