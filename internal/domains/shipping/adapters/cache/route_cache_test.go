package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
)

func loaderOf(calls *int, route []domain.ShipmentStep) func(context.Context) ([]domain.ShipmentStep, error) {
	return func(context.Context) ([]domain.ShipmentStep, error) {
		*calls++
		return route, nil
	}
}

func TestGetOrCompute_MemoizesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	c := NewRouteCache(time.Minute)
	calls := 0
	load := loaderOf(&calls, []domain.ShipmentStep{{ID: 1, OrderID: 42, Position: 1, LocationName: "A"}})

	for i := 0; i < 3; i++ {
		route, err := c.GetOrCompute(ctx, 42, load)
		require.NoError(t, err)
		require.Len(t, route, 1)
	}
	require.Equal(t, 1, calls)
	require.Equal(t, 1, c.Len())

	require.NoError(t, c.Invalidate(ctx, 42))
	require.Equal(t, 0, c.Len())
	_, err := c.GetOrCompute(ctx, 42, load)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestGetOrCompute_KeysAreIndependentPerOrder(t *testing.T) {
	ctx := context.Background()
	c := NewRouteCache(time.Minute)
	calls := 0
	load := loaderOf(&calls, nil)

	_, err := c.GetOrCompute(ctx, 1, load)
	require.NoError(t, err)
	_, err = c.GetOrCompute(ctx, 2, load)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, 1))
	_, err = c.GetOrCompute(ctx, 2, load)
	require.NoError(t, err)

	require.Equal(t, 2, calls)
	require.NoError(t, c.Invalidate(ctx, 77))
}

func TestGetOrCompute_EmptyRouteIsCached(t *testing.T) {
	ctx := context.Background()
	c := NewRouteCache(time.Minute)
	calls := 0

	route, err := c.GetOrCompute(ctx, 9, loaderOf(&calls, nil))
	require.NoError(t, err)
	require.NotNil(t, route)
	require.Empty(t, route)

	_, err = c.GetOrCompute(ctx, 9, loaderOf(&calls, nil))
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestGetOrCompute_LoadErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c := NewRouteCache(time.Minute)
	boom := errors.New("db down")

	_, err := c.GetOrCompute(ctx, 5, func(context.Context) ([]domain.ShipmentStep, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, c.Len())
}

func TestGetOrCompute_CallersCannotMutateCachedRoute(t *testing.T) {
	ctx := context.Background()
	c := NewRouteCache(time.Minute)
	calls := 0
	load := loaderOf(&calls, []domain.ShipmentStep{{ID: 1, LocationName: "A"}})

	first, err := c.GetOrCompute(ctx, 42, load)
	require.NoError(t, err)
	first[0].LocationName = "mutated"

	second, err := c.GetOrCompute(ctx, 42, load)
	require.NoError(t, err)
	require.Equal(t, "A", second[0].LocationName)
}

func TestGetOrCompute_LoadRacingInvalidationIsNotStored(t *testing.T) {
	ctx := context.Background()
	c := NewRouteCache(time.Minute)

	stale := []domain.ShipmentStep{{ID: 1, IsReached: false}}
	route, err := c.GetOrCompute(ctx, 42, func(ctx context.Context) ([]domain.ShipmentStep, error) {
		// a writer commits and invalidates while this load is in flight
		require.NoError(t, c.Invalidate(ctx, 42))
		return stale, nil
	})
	require.NoError(t, err)
	require.Equal(t, stale, route)
	require.Equal(t, 0, c.Len())
}

func TestGetOrCompute_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	c := NewRouteCache(20 * time.Millisecond)
	calls := 0
	load := loaderOf(&calls, []domain.ShipmentStep{{ID: 1}})

	_, err := c.GetOrCompute(ctx, 42, load)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = c.GetOrCompute(ctx, 42, load)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestNewRouteCache_DefaultsTTL(t *testing.T) {
	require.Equal(t, DefaultTTL, NewRouteCache(0).ttl)
}
