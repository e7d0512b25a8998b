package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	"github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
)

// DefaultTTL bounds how long a memoized route may be served.
const DefaultTTL = time.Hour

const keyPrefix = "shipment_route:"

var _ ports.RouteCache = (*RouteCache)(nil)

// RouteCache memoizes ordered routes in process memory.
// A route loaded before an invalidation of the same order is returned but never stored.
type RouteCache struct {
	store *gocache.Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[int64]uint64
}

// NewRouteCache builds a cache whose entries expire after ttl (DefaultTTL when ttl <= 0).
func NewRouteCache(ttl time.Duration) *RouteCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RouteCache{
		store:       gocache.New(ttl, 2*ttl),
		ttl:         ttl,
		generations: map[int64]uint64{},
	}
}

// GetOrCompute serves the cached route or loads, stores and returns it.
func (c *RouteCache) GetOrCompute(ctx context.Context, orderID int64, load ports.RouteLoader) ([]domain.ShipmentStep, error) {
	if cached, ok := c.store.Get(key(orderID)); ok {
		if route, ok := cached.([]domain.ShipmentStep); ok {
			return domain.CloneRoute(route), nil
		}
	}
	c.mu.Lock()
	generation := c.generations[orderID]
	c.mu.Unlock()

	route, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if route == nil {
		route = []domain.ShipmentStep{}
	}
	c.mu.Lock()
	if c.generations[orderID] == generation {
		c.store.Set(key(orderID), domain.CloneRoute(route), c.ttl)
	}
	c.mu.Unlock()
	return route, nil
}

// Invalidate drops the cached route for the order.
func (c *RouteCache) Invalidate(_ context.Context, orderID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[orderID]++
	c.store.Delete(key(orderID))
	return nil
}

// Len reports the number of cached routes, including expired ones not yet evicted.
func (c *RouteCache) Len() int {
	return c.store.ItemCount()
}

func key(orderID int64) string {
	return keyPrefix + strconv.FormatInt(orderID, 10)
}
