//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderpostgres "github.com/Apurer/storefront-tracking/internal/domains/orders/adapters/persistence/postgres"
	orderdomain "github.com/Apurer/storefront-tracking/internal/domains/orders/domain"
	shippingpostgres "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/persistence/postgres"
	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	"github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
	"github.com/Apurer/storefront-tracking/internal/platform/postgres/pgtest"
)

func placeOrder(t *testing.T, repo *orderpostgres.Repository, id int64) {
	t.Helper()
	order, err := orderdomain.NewOrder(id, decimal.NewFromInt(10), orderdomain.Address{Recipient: "Test"}, nil, time.Now())
	require.NoError(t, err)
	_, err = repo.Save(context.Background(), order)
	require.NoError(t, err)
}

func newRoute(t *testing.T, orderID int64, names ...string) []domain.ShipmentStep {
	t.Helper()
	stops := make([]domain.StopDescriptor, 0, len(names))
	for _, n := range names {
		stops = append(stops, domain.StopDescriptor{Name: n})
	}
	route, err := domain.NewRoute(orderID, stops, time.Now())
	require.NoError(t, err)
	return route
}

func TestPostgresShipmentRepository(t *testing.T) {
	conn := pgtest.Start(t)
	orders := orderpostgres.NewRepository(conn.DB)
	repo := shippingpostgres.NewRepository(conn.DB)
	ctx := context.Background()

	t.Run("ReplaceRoute persists and replaces", func(t *testing.T) {
		placeOrder(t, orders, 100)
		lat := decimal.RequireFromString("52.5200000")
		route := newRoute(t, 100, "A", "B", "C")
		route[0].Latitude = decimal.NewNullDecimal(lat)

		saved, err := repo.ReplaceRoute(ctx, 100, route)
		require.NoError(t, err)
		require.Len(t, saved, 3)
		for _, step := range saved {
			assert.NotZero(t, step.ID)
		}

		listed, err := repo.ListByOrder(ctx, 100)
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, []string{"A", "B", "C"}, []string{listed[0].LocationName, listed[1].LocationName, listed[2].LocationName})
		assert.True(t, listed[0].Latitude.Valid)
		assert.True(t, listed[0].Latitude.Decimal.Equal(lat))
		assert.False(t, listed[1].Latitude.Valid)

		_, err = repo.ReplaceRoute(ctx, 100, newRoute(t, 100, "X"))
		require.NoError(t, err)
		listed, err = repo.ListByOrder(ctx, 100)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, 1, listed[0].Position)

		_, err = repo.GetByID(ctx, saved[0].ID)
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("ReplaceRoute for unknown order", func(t *testing.T) {
		_, err := repo.ReplaceRoute(ctx, 9999, newRoute(t, 9999, "A"))
		assert.ErrorIs(t, err, ports.ErrOrderNotFound)
	})

	t.Run("AdvanceNext reaches steps in position order", func(t *testing.T) {
		placeOrder(t, orders, 200)
		saved, err := repo.ReplaceRoute(ctx, 200, newRoute(t, 200, "A", "B"))
		require.NoError(t, err)
		at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

		step, err := repo.AdvanceNext(ctx, 200, at)
		require.NoError(t, err)
		require.NotNil(t, step)
		assert.Equal(t, saved[0].ID, step.ID)
		assert.True(t, step.IsReached)

		stored, err := repo.GetByID(ctx, saved[0].ID)
		require.NoError(t, err)
		assert.True(t, stored.IsReached)
		require.NotNil(t, stored.ReachedAt)
		assert.True(t, at.Equal(*stored.ReachedAt))

		step, err = repo.AdvanceNext(ctx, 200, at)
		require.NoError(t, err)
		assert.Equal(t, saved[1].ID, step.ID)

		step, err = repo.AdvanceNext(ctx, 200, at)
		require.NoError(t, err)
		assert.Nil(t, step)
	})

	t.Run("AdvanceNext is serialized per order", func(t *testing.T) {
		placeOrder(t, orders, 300)
		_, err := repo.ReplaceRoute(ctx, 300, newRoute(t, 300, "A", "B", "C", "D", "E"))
		require.NoError(t, err)

		var (
			wg       sync.WaitGroup
			advances atomic.Int32
		)
		for i := 0; i < 12; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				step, err := repo.AdvanceNext(ctx, 300, time.Now())
				if err == nil && step != nil {
					advances.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(5), advances.Load())
		listed, err := repo.ListByOrder(ctx, 300)
		require.NoError(t, err)
		for _, step := range listed {
			assert.True(t, step.IsReached)
		}
	})

	t.Run("Save and Delete", func(t *testing.T) {
		placeOrder(t, orders, 400)
		saved, err := repo.ReplaceRoute(ctx, 400, newRoute(t, 400, "A", "B"))
		require.NoError(t, err)

		step := saved[1]
		desc := "out for delivery"
		step.StatusDescription = &desc
		step.Position = 7
		updated, err := repo.Save(ctx, &step)
		require.NoError(t, err)
		assert.Equal(t, 7, updated.Position)
		assert.Equal(t, desc, *updated.StatusDescription)

		missing := domain.ShipmentStep{ID: 987654, LocationName: "nowhere", Position: 1}
		_, err = repo.Save(ctx, &missing)
		assert.ErrorIs(t, err, ports.ErrNotFound)

		require.NoError(t, repo.Delete(ctx, saved[0].ID))
		assert.ErrorIs(t, repo.Delete(ctx, saved[0].ID), ports.ErrNotFound)
		listed, err := repo.ListByOrder(ctx, 400)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, 7, listed[0].Position)
	})

	t.Run("hard-deleting an order cascades to its steps", func(t *testing.T) {
		placeOrder(t, orders, 500)
		_, err := repo.ReplaceRoute(ctx, 500, newRoute(t, 500, "A"))
		require.NoError(t, err)

		require.NoError(t, conn.DB.Exec("DELETE FROM orders WHERE id = ?", 500).Error)
		listed, err := repo.ListByOrder(ctx, 500)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}
