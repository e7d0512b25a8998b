package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	shippingapp "github.com/Apurer/storefront-tracking/internal/domains/shipping/application"
	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	"github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
	shippingactivities "github.com/Apurer/storefront-tracking/internal/platform/temporal/activities/shipping"
	shippingworkflows "github.com/Apurer/storefront-tracking/internal/platform/temporal/workflows/shipping"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalRouteWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineRouteWorkflows)(nil)
)

// TemporalRouteWorkflows starts route seeding workflows on a Temporal cluster.
// The route is written by the worker process, so the caller's route cache is
// invalidated here once the workflow result is in.
type TemporalRouteWorkflows struct {
	client    client.Client
	taskQueue string
	cache     ports.RouteCache
}

// TemporalOption customises the Temporal orchestrator.
type TemporalOption func(*TemporalRouteWorkflows)

// WithRouteCache sets the cache to invalidate after a seeded route is returned.
func WithRouteCache(cache ports.RouteCache) TemporalOption {
	return func(o *TemporalRouteWorkflows) {
		if cache != nil {
			o.cache = cache
		}
	}
}

// NewTemporalRouteWorkflows wires a Temporal client into the orchestrator.
func NewTemporalRouteWorkflows(c client.Client, opts ...TemporalOption) *TemporalRouteWorkflows {
	o := &TemporalRouteWorkflows{
		client:    c,
		taskQueue: shippingworkflows.ShipmentTaskQueue,
		cache:     ports.NoopRouteCache,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// SeedRoute starts the workflow that replaces an order's route and waits for its result.
func (o *TemporalRouteWorkflows) SeedRoute(ctx context.Context, orderID int64, stops []domain.StopDescriptor) ([]domain.ShipmentStep, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal route workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildRouteWorkflowID(orderID, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	input := shippingworkflows.RouteSeedingWorkflowInput{
		Command: shippingactivities.RouteSeedInput{OrderID: orderID, Stops: stops},
		TraceID: traceComponent,
	}
	run, err := o.client.ExecuteWorkflow(ctx, options, shippingworkflows.RouteSeedingWorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return o.awaitRoute(ctx, orderID, o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId))
		}
		return nil, err
	}
	return o.awaitRoute(ctx, orderID, run)
}

func (o *TemporalRouteWorkflows) awaitRoute(ctx context.Context, orderID int64, run client.WorkflowRun) ([]domain.ShipmentStep, error) {
	var route []domain.ShipmentStep
	if err := run.Get(ctx, &route); err != nil {
		return nil, translateWorkflowError(err)
	}
	if err := o.cache.Invalidate(ctx, orderID); err != nil {
		return nil, fmt.Errorf("invalidate route cache for order %d: %w", orderID, err)
	}
	return route, nil
}

// translateWorkflowError restores the service sentinels that crossed the workflow boundary as application errors.
func translateWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case shippingactivities.InvalidRouteErrorType:
		return fmt.Errorf("%w: %s", shippingapp.ErrInvalidInput, appErr.Message())
	case shippingactivities.OrderNotFoundErrorType:
		return fmt.Errorf("%w: %s", ports.ErrOrderNotFound, appErr.Message())
	default:
		return err
	}
}

// InlineRouteWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineRouteWorkflows struct {
	service ports.Service
}

// NewInlineRouteWorkflows wraps the tracking service for synchronous execution.
func NewInlineRouteWorkflows(service ports.Service) *InlineRouteWorkflows {
	return &InlineRouteWorkflows{service: service}
}

// SeedRoute delegates to the application service without durable orchestration.
func (o *InlineRouteWorkflows) SeedRoute(ctx context.Context, orderID int64, stops []domain.StopDescriptor) ([]domain.ShipmentStep, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline route workflows not configured")
	}
	return o.service.BuildRoute(ctx, orderID, stops)
}

func buildRouteWorkflowID(orderID int64, traceComponent string) string {
	return fmt.Sprintf("shipment-route-%d-%s", orderID, traceComponent)
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
