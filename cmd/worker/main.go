package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/storefront-tracking/internal/app/api"
	platformmetrics "github.com/Apurer/storefront-tracking/internal/platform/metrics"
	platformobservability "github.com/Apurer/storefront-tracking/internal/platform/observability"
	shippingactivities "github.com/Apurer/storefront-tracking/internal/platform/temporal/activities/shipping"
	shippingworkflows "github.com/Apurer/storefront-tracking/internal/platform/temporal/workflows/shipping"
)

func main() {
	ctx := context.Background()
	const serviceName = "storefront-tracking-worker"
	metrics := platformmetrics.New()
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName,
		platformobservability.WithPrometheus(metrics.Registerer()))
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	cfg, err := api.LoadConfig()
	if err != nil {
		logger.Error("invalid worker configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	// The worker always dials Temporal, TEMPORAL_DISABLED only applies to the API.
	cfg.TemporalDisabled = false
	// Reads are served by the API, the worker only writes.
	cfg.RouteCacheDisabled = true

	services, cleanup, err := api.BuildServices(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build services", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()
	if !services.Durable() {
		logger.Error("worker requires POSTGRES_DSN, memory repositories are not shared with the API")
		os.Exit(1)
	}
	if addr := strings.TrimSpace(os.Getenv("WORKER_METRICS_ADDR")); addr != "" {
		metricsServer := &http.Server{Addr: addr, Handler: metrics.Handler(), ReadHeaderTimeout: 10 * time.Second}
		defer metricsServer.Close()
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics server stopped", slog.String("error", err.Error()))
			}
		}()
	}
	routeActivities := shippingactivities.NewActivities(services.Shipping)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, shippingworkflows.ShipmentTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(shippingworkflows.RouteSeedingWorkflow, workflow.RegisterOptions{Name: shippingworkflows.RouteSeedingWorkflowName})
	w.RegisterActivityWithOptions(routeActivities.BuildRoute, activity.RegisterOptions{Name: shippingactivities.BuildRouteActivityName})

	logger.Info("worker listening", slog.String("taskQueue", shippingworkflows.ShipmentTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
