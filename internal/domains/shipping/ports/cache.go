package ports

import (
	"context"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
)

// RouteLoader computes a route from durable storage.
type RouteLoader func(ctx context.Context) ([]domain.ShipmentStep, error)

// RouteCache memoizes ordered routes per order.
type RouteCache interface {
	GetOrCompute(ctx context.Context, orderID int64, load RouteLoader) ([]domain.ShipmentStep, error)
	// Invalidate drops any cached route for the order; it is a no-op when none is cached.
	Invalidate(ctx context.Context, orderID int64) error
}

// NoopRouteCache always loads from storage.
var NoopRouteCache RouteCache = noopRouteCache{}

type noopRouteCache struct{}

func (noopRouteCache) GetOrCompute(ctx context.Context, _ int64, load RouteLoader) ([]domain.ShipmentStep, error) {
	return load(ctx)
}

func (noopRouteCache) Invalidate(context.Context, int64) error { return nil }
