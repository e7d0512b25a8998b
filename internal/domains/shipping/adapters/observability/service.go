package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	shippingdomain "github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	shippingports "github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
)

const tracerName = "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/observability/service"

// Service decorates the tracking service with tracing, logging, and metrics.
type Service struct {
	inner   shippingports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core tracking service.
func New(inner shippingports.Service, opts ...Option) shippingports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) BuildRoute(ctx context.Context, orderID int64, stops []shippingdomain.StopDescriptor) ([]shippingdomain.ShipmentStep, error) {
	ctx, span := s.tracer.Start(ctx, "ShipmentService.BuildRoute",
		trace.WithAttributes(attribute.Int64("order.id", orderID), attribute.Int("route.stops", len(stops))))
	defer span.End()

	s.logInfo(ctx, "building shipment route", slog.Int64("order.id", orderID), slog.Int("stops", len(stops)))
	route, err := s.inner.BuildRoute(ctx, orderID, stops)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to build shipment route", slog.Int64("order.id", orderID))
	}
	s.metrics.recordRouteBuilt(ctx, len(route))
	s.logInfo(ctx, "shipment route built", slog.Int64("order.id", orderID), slog.Int("steps", len(route)))
	return route, nil
}

func (s *Service) Advance(ctx context.Context, orderID int64) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "ShipmentService.Advance", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	advanced, err := s.inner.Advance(ctx, orderID)
	if err != nil {
		return advanced, s.handleError(ctx, span, err, "failed to advance shipment", slog.Int64("order.id", orderID))
	}
	span.SetAttributes(attribute.Bool("shipment.advanced", advanced))
	s.metrics.recordAdvance(ctx, advanced)
	s.logInfo(ctx, "shipment advance evaluated", slog.Int64("order.id", orderID), slog.Bool("advanced", advanced))
	return advanced, nil
}

func (s *Service) GetRoute(ctx context.Context, orderID int64) ([]shippingdomain.ShipmentStep, error) {
	ctx, span := s.tracer.Start(ctx, "ShipmentService.GetRoute", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	route, err := s.inner.GetRoute(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load shipment route", slog.Int64("order.id", orderID))
	}
	span.SetAttributes(attribute.Int("route.steps", len(route)))
	return route, nil
}

func (s *Service) GetProgress(ctx context.Context, orderID int64) (shippingdomain.Progress, error) {
	ctx, span := s.tracer.Start(ctx, "ShipmentService.GetProgress", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	progress, err := s.inner.GetProgress(ctx, orderID)
	if err != nil {
		return progress, s.handleError(ctx, span, err, "failed to compute shipment progress", slog.Int64("order.id", orderID))
	}
	span.SetAttributes(
		attribute.Int("progress.percentage", progress.Percentage),
		attribute.Bool("progress.delivered", progress.IsDelivered),
	)
	return progress, nil
}

func (s *Service) UpdateStep(ctx context.Context, stepID int64, patch shippingdomain.StepPatch) (*shippingdomain.ShipmentStep, error) {
	ctx, span := s.tracer.Start(ctx, "ShipmentService.UpdateStep", trace.WithAttributes(attribute.Int64("step.id", stepID)))
	defer span.End()

	s.logInfo(ctx, "updating shipment step", slog.Int64("step.id", stepID))
	step, err := s.inner.UpdateStep(ctx, stepID, patch)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update shipment step", slog.Int64("step.id", stepID))
	}
	s.metrics.recordMutation(ctx, "update")
	return step, nil
}

func (s *Service) ToggleReached(ctx context.Context, stepID int64) (*shippingdomain.ShipmentStep, error) {
	ctx, span := s.tracer.Start(ctx, "ShipmentService.ToggleReached", trace.WithAttributes(attribute.Int64("step.id", stepID)))
	defer span.End()

	s.logInfo(ctx, "toggling shipment step", slog.Int64("step.id", stepID))
	step, err := s.inner.ToggleReached(ctx, stepID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to toggle shipment step", slog.Int64("step.id", stepID))
	}
	s.metrics.recordMutation(ctx, "toggle")
	s.logInfo(ctx, "shipment step toggled", slog.Int64("step.id", stepID), slog.Bool("reached", step.IsReached))
	return step, nil
}

func (s *Service) DeleteStep(ctx context.Context, stepID int64) error {
	ctx, span := s.tracer.Start(ctx, "ShipmentService.DeleteStep", trace.WithAttributes(attribute.Int64("step.id", stepID)))
	defer span.End()

	s.logInfo(ctx, "deleting shipment step", slog.Int64("step.id", stepID))
	if err := s.inner.DeleteStep(ctx, stepID); err != nil {
		return s.handleError(ctx, span, err, "failed to delete shipment step", slog.Int64("step.id", stepID))
	}
	s.metrics.recordMutation(ctx, "delete")
	return nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	routesBuilt metric.Int64Counter
	routeSteps  metric.Int64Histogram
	advances    metric.Int64Counter
	mutations   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	routesBuilt, _ := m.Int64Counter("shipping.service.routes_built", metric.WithDescription("Number of shipment routes seeded"))
	routeSteps, _ := m.Int64Histogram("shipping.service.route_steps", metric.WithDescription("Steps per seeded route"))
	advances, _ := m.Int64Counter("shipping.service.advances", metric.WithDescription("Advance calls by outcome"))
	mutations, _ := m.Int64Counter("shipping.service.step_mutations", metric.WithDescription("Direct step edits by kind"))
	return serviceMetrics{routesBuilt: routesBuilt, routeSteps: routeSteps, advances: advances, mutations: mutations}
}

func (m serviceMetrics) recordRouteBuilt(ctx context.Context, steps int) {
	if m.routesBuilt != nil {
		m.routesBuilt.Add(ctx, 1)
	}
	if m.routeSteps != nil {
		m.routeSteps.Record(ctx, int64(steps))
	}
}

func (m serviceMetrics) recordAdvance(ctx context.Context, advanced bool) {
	if m.advances != nil {
		m.advances.Add(ctx, 1, metric.WithAttributes(attribute.Bool("shipment.advanced", advanced)))
	}
}

func (m serviceMetrics) recordMutation(ctx context.Context, kind string) {
	if m.mutations != nil {
		m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("mutation.kind", kind)))
	}
}

var _ shippingports.Service = (*Service)(nil)
