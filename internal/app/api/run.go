package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	storefrontserver "github.com/Apurer/storefront-tracking/go"
	shippingamqp "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/events/amqp"
	shippingworkflows "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/workflows"
	shippingports "github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
	platformmetrics "github.com/Apurer/storefront-tracking/internal/platform/metrics"
	platformobservability "github.com/Apurer/storefront-tracking/internal/platform/observability"
)

// ServiceName identifies the API in traces, metrics and logs.
const ServiceName = "storefront-tracking-api"

// Run boots the storefront HTTP API with observability, repositories, and workflows wired.
// It returns once ctx is cancelled and the server has drained.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	httpMetrics := platformmetrics.New()
	instruments, shutdown, err := platformobservability.Init(ctx, ServiceName,
		platformobservability.WithPrometheus(httpMetrics.Registerer()))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	services, cleanup, err := BuildServices(ctx, cfg, instruments)
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}
	defer cleanup()

	if cfg.AMQPURL != "" {
		invalidator, err := shippingamqp.ListenForInvalidations(cfg.AMQPURL, cfg.EventsExchange, services.RouteCache, logger)
		if err != nil {
			logger.Warn("route cache invalidation unavailable, relying on TTL", slog.String("error", err.Error()))
		} else {
			defer invalidator.Close()
			go invalidator.Run(ctx)
		}
	}

	var routeWorkflows shippingports.WorkflowOrchestrator = shippingworkflows.NewInlineRouteWorkflows(services.Shipping)
	switch temporalClient, err := ConnectTemporalClient(cfg, instruments); {
	case err != nil:
		logger.Warn("Temporal workflows unavailable, building routes inline", slog.String("error", err.Error()))
	case !services.Durable():
		// a worker could never see this process's memory repositories
		temporalClient.Close()
		logger.Warn("Temporal workflows need POSTGRES_DSN, building routes inline")
	default:
		defer temporalClient.Close()
		routeWorkflows = shippingworkflows.NewTemporalRouteWorkflows(temporalClient,
			shippingworkflows.WithRouteCache(services.RouteCache))
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := storefrontserver.ApiHandleFunctions{
		OrderAPI:    storefrontserver.NewOrderAPI(services.Orders),
		ShipmentAPI: storefrontserver.NewShipmentAPI(services.Shipping, routeWorkflows),
	}
	router := storefrontserver.NewRouter(handlers,
		storefrontserver.WithTracing(ServiceName),
		storefrontserver.WithMetrics(httpMetrics),
	)

	server := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("storefront API listening", slog.String("addr", cfg.Addr()))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("storefront API server exited", slog.String("addr", cfg.Addr()), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down storefront API")
	return server.Shutdown(shutdownCtx)
}
