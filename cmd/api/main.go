package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/veloramarket/storefront-checkout/api/routes"
	checkoutsvc "github.com/veloramarket/storefront-checkout/internal/checkout"
	"github.com/veloramarket/storefront-checkout/internal/gateway"
	"github.com/veloramarket/storefront-checkout/internal/orders"
	"github.com/veloramarket/storefront-checkout/internal/polling"
	"github.com/veloramarket/storefront-checkout/pkg/config"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
	"github.com/veloramarket/storefront-checkout/pkg/metrics"
	"github.com/veloramarket/storefront-checkout/pkg/redis"
)

const shutdownGrace = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-checkout"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-checkout",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	backend, err := orders.NewClient(cfg.Backend, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap backend client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)
	pollingMetrics := metrics.NewPollingMetrics(registry)

	bridge := newBridge(cfg, backend, logg)
	guard := checkoutsvc.NewRedisGuard(redisClient, cfg.Polling.Budget*5)

	checkoutService, err := checkoutsvc.NewService(backend, bridge, guard, checkoutsvc.NewSessionStore(), nil, logg, checkoutMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	poller, err := polling.New(backend, polling.Options{
		Interval: cfg.Polling.Interval,
		Budget:   cfg.Polling.Budget,
	}, logg, pollingMetrics)
	if err != nil {
		logg.Error(ctx, "failed to create polling controller", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"provider": cfg.Gateway.Provider,
	})
	logg.Info(startCtx, "starting storefront checkout api")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Orders:          backend,
			Checkout:        checkoutService,
			Poller:          poller,
			Idempotency:     redisClient,
			BackendPinger:   backend,
			CachePinger:     redisClient,
			MetricsGatherer: registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(startCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	closeErr := multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
	)
	if closeErr != nil {
		logg.Error(startCtx, "error during shutdown", closeErr)
		os.Exit(1)
	}
	logg.Info(startCtx, "shutdown complete")
}

func newBridge(cfg *config.Config, backend *orders.Client, logg *logger.Logger) gateway.Bridge {
	if cfg.Gateway.Provider == config.ProviderStripe {
		return gateway.NewStripeBridge(cfg.Gateway, logg)
	}
	return gateway.NewHostedBridge(backend, cfg.Gateway, logg)
}
