package api

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	ordermemory "github.com/Apurer/storefront-tracking/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/storefront-tracking/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/storefront-tracking/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/Apurer/storefront-tracking/internal/domains/orders/application"
	orderports "github.com/Apurer/storefront-tracking/internal/domains/orders/ports"
	shippingcache "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/cache"
	shippingamqp "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/events/amqp"
	shippingmemory "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/memory"
	shippingobs "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/observability"
	shippingpostgres "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/persistence/postgres"
	shippingapp "github.com/Apurer/storefront-tracking/internal/domains/shipping/application"
	shippingports "github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
	platformmigrations "github.com/Apurer/storefront-tracking/internal/platform/migrations"
	platformobservability "github.com/Apurer/storefront-tracking/internal/platform/observability"
	platformpostgres "github.com/Apurer/storefront-tracking/internal/platform/postgres"
)

// Services holds the instrumented application services shared by the API, the worker and the CLI.
type Services struct {
	Orders   orderports.Service
	Shipping shippingports.Service

	// RouteCache is the cache behind Shipping. Writes made by other processes must invalidate it.
	RouteCache shippingports.RouteCache

	// DB is nil when the services run on memory repositories.
	DB *gorm.DB
}

// Durable reports whether routes are stored where other processes can see them.
func (s *Services) Durable() bool {
	return s != nil && s.DB != nil
}

// BuildServices wires repositories, the route cache and the event publisher.
// Postgres and AMQP are optional: without them the services run on memory adapters and a no-op publisher.
func BuildServices(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*Services, func(), error) {
	logger := effectiveLogger(instruments)
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var (
		orderRepo    orderports.Repository    = ordermemory.NewRepository()
		shipmentRepo shippingports.Repository = shippingmemory.NewRepository()
		db           *gorm.DB
	)
	conn, closeDB := platformpostgres.ConnectDSN(ctx, cfg.PostgresDSN, logger)
	cleanups = append(cleanups, closeDB)
	if conn != nil {
		if err := platformmigrations.Run(conn.DB.WithContext(ctx)); err != nil {
			cleanup()
			return nil, nil, err
		}
		db = conn.DB
		orderRepo = orderpostgres.NewRepository(db)
		shipmentRepo = shippingpostgres.NewRepository(db)
		logger.Info("order and shipment repositories configured with postgres")
	}

	orderService := orderobs.New(
		orderapp.NewService(orderRepo),
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	var publisher shippingports.EventPublisher = shippingports.NoopPublisher
	if cfg.AMQPURL != "" {
		amqpPublisher, err := shippingamqp.Dial(cfg.AMQPURL, cfg.EventsExchange, logger)
		if err != nil {
			logger.Warn("failed to connect to AMQP broker, shipment events disabled", slog.String("error", err.Error()))
		} else {
			cleanups = append(cleanups, func() { _ = amqpPublisher.Close() })
			publisher = amqpPublisher
			logger.Info("shipment events published to AMQP", slog.String("exchange", cfg.EventsExchange))
		}
	}

	var routeCache shippingports.RouteCache = shippingports.NoopRouteCache
	if !cfg.RouteCacheDisabled {
		routeCache = shippingcache.NewRouteCache(cfg.RouteCacheTTL)
	}

	shippingService := shippingobs.New(
		shippingapp.NewService(
			shipmentRepo,
			routeCache,
			shippingapp.WithOrderLookup(orderService),
			shippingapp.WithEventPublisher(publisher),
		),
		shippingobs.WithLogger(logger),
		shippingobs.WithTracer(instruments.Tracer("internal.shipping.application")),
		shippingobs.WithMeter(instruments.Meter("internal.shipping.application")),
	)

	return &Services{Orders: orderService, Shipping: shippingService, RouteCache: routeCache, DB: db}, cleanup, nil
}

// ConnectTemporalClient dials Temporal with tracing and structured logging unless disabled.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
