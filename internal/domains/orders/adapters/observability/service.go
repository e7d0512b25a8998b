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

	orderdomain "github.com/Apurer/storefront-tracking/internal/domains/orders/domain"
	orderports "github.com/Apurer/storefront-tracking/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/storefront-tracking/internal/domains/orders/adapters/observability/service"

// Service decorates the order service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
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

// New wraps the core order service.
func New(inner orderports.Service, opts ...Option) orderports.Service {
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

func (s *Service) PlaceOrder(ctx context.Context, order *orderdomain.Order) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.Int64("order.id", order.ID), attribute.String("order.total", order.Total.String())))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int64("order.id", order.ID))
	result, err := s.inner.PlaceOrder(ctx, order)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.Int64("order.id", order.ID))
	}
	s.metrics.recordPlaced(ctx, result.Status)
	s.logInfo(ctx, "order placed", slog.Int64("order.id", result.ID), slog.String("status", result.Status.String()))
	return result, nil
}

func (s *Service) GetOrderByID(ctx context.Context, id int64) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrderByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	result, err := s.inner.GetOrderByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.Int64("order.id", id))
	}
	return result, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListOrders")
	defer span.End()

	result, err := s.inner.ListOrders(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("orders.count", len(result)))
	return result, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status orderdomain.Status) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus",
		trace.WithAttributes(attribute.Int64("order.id", id), attribute.String("order.status", status.String())))
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.Int64("order.id", id), slog.String("status", status.String()))
	result, err := s.inner.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.Int64("order.id", id))
	}
	s.metrics.recordTransition(ctx, "status", result.Status.String())
	return result, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, status orderdomain.PaymentStatus) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdatePaymentStatus",
		trace.WithAttributes(attribute.Int64("order.id", id), attribute.String("order.payment_status", status.String())))
	defer span.End()

	s.logInfo(ctx, "updating payment status", slog.Int64("order.id", id), slog.String("payment_status", status.String()))
	result, err := s.inner.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update payment status", slog.Int64("order.id", id))
	}
	s.metrics.recordTransition(ctx, "payment_status", result.PaymentStatus.String())
	return result, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.DeleteOrder", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	s.logInfo(ctx, "deleting order", slog.Int64("order.id", id))
	if err := s.inner.DeleteOrder(ctx, id); err != nil {
		return s.handleError(ctx, span, err, "failed to delete order", slog.Int64("order.id", id))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "order deleted", slog.Int64("order.id", id))
	return nil
}

func (s *Service) StatusSummary(ctx context.Context) (map[string]int64, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.StatusSummary")
	defer span.End()

	result, err := s.inner.StatusSummary(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to summarise orders")
	}
	span.SetAttributes(attribute.Int("summary.status.count", len(result)))
	return result, nil
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Exists", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	ok, err := s.inner.Exists(ctx, id)
	if err != nil {
		return false, s.handleError(ctx, span, err, "failed to check order", slog.Int64("order.id", id))
	}
	return ok, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	ordersPlaced  metric.Int64Counter
	ordersDeleted metric.Int64Counter
	transitions   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersPlaced, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders placed"))
	ordersDeleted, _ := m.Int64Counter("orders.service.orders_deleted", metric.WithDescription("Number of orders soft-deleted"))
	transitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Order status and payment transitions"))
	return serviceMetrics{ordersPlaced: ordersPlaced, ordersDeleted: ordersDeleted, transitions: transitions}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, status orderdomain.Status) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", status.String())))
	}
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	if m.ordersDeleted != nil {
		m.ordersDeleted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordTransition(ctx context.Context, kind, to string) {
	if m.transitions != nil {
		m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("transition.kind", kind), attribute.String("transition.to", to)))
	}
}

var _ orderports.Service = (*Service)(nil)
