package observability_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/resource"

	shippingmemory "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/memory"
	shippingobs "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/observability"
	shippingapp "github.com/Apurer/storefront-tracking/internal/domains/shipping/application"
	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	"github.com/Apurer/storefront-tracking/internal/platform/observability"
)

func TestMeterProviderServesShipmentCounters(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	provider, err := observability.NewMeterProvider(resource.Empty(), reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	instruments := &observability.Instruments{MeterProvider: provider}
	svc := shippingobs.New(
		shippingapp.NewService(shippingmemory.NewRepository(), nil),
		shippingobs.WithMeter(instruments.Meter("internal.shipping.application")),
	)

	_, err = svc.BuildRoute(ctx, 42, []domain.StopDescriptor{{Name: "Warehouse"}, {Name: "Doorstep"}})
	require.NoError(t, err)
	advanced, err := svc.Advance(ctx, 42)
	require.NoError(t, err)
	require.True(t, advanced)

	require.Equal(t, 1.0, counterTotal(t, reg, "advances"))
	require.Equal(t, 1.0, counterTotal(t, reg, "routes_built"))

	advanced, err = svc.Advance(ctx, 42)
	require.NoError(t, err)
	require.True(t, advanced)
	require.Equal(t, 2.0, counterTotal(t, reg, "advances"))
}

func TestInstrumentsFallBackToNoop(t *testing.T) {
	var unset *observability.Instruments
	require.NotNil(t, unset.Meter("x"))
	require.NotNil(t, unset.Tracer("x"))
}

// counterTotal sums every series of the shipping counter whose name contains fragment.
func counterTotal(t *testing.T, g prometheus.Gatherer, fragment string) float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)
	var total float64
	found := false
	for _, family := range families {
		name := strings.ReplaceAll(family.GetName(), ".", "_")
		if !strings.HasPrefix(name, "shipping_service_") || !strings.Contains(name, fragment) {
			continue
		}
		found = true
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	require.True(t, found, "no shipping_service counter matching %q", fragment)
	return total
}
