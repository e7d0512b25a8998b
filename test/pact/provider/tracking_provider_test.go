//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/Apurer/storefront-tracking/test/pact"

	storefrontserver "github.com/Apurer/storefront-tracking/go"
	ordermemory "github.com/Apurer/storefront-tracking/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/storefront-tracking/internal/domains/orders/adapters/observability"
	orderapp "github.com/Apurer/storefront-tracking/internal/domains/orders/application"
	orderdomain "github.com/Apurer/storefront-tracking/internal/domains/orders/domain"
	orderports "github.com/Apurer/storefront-tracking/internal/domains/orders/ports"
	shippingcache "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/cache"
	shippingmemory "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/memory"
	shippingobs "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/observability"
	shippingworkflows "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/workflows"
	shippingapp "github.com/Apurer/storefront-tracking/internal/domains/shipping/application"
	shippingdomain "github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	shippingports "github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTrackingProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateRouteSeeded: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedOrder(t, pacttest.RoutedOrderID)
				app.seedRoute(t, pacttest.RoutedOrderID, pacttest.RouteStops...)
			}
			return nil, nil
		},
		pacttest.StateOrderNoRoute: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedOrder(t, pacttest.PlainOrderID)
			}
			return nil, nil
		},
		pacttest.StateOrderMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset()
			return nil
		},
	})
	require.NoError(t, err)
}

// contractProviderApp serves a router whose in-memory services are rebuilt on
// every state change.
type contractProviderApp struct {
	mu       sync.RWMutex
	router   http.Handler
	orders   orderports.Service
	shipping shippingports.Service
	server   *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset()

	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		router := app.router
		app.mu.RUnlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset() {
	orders := orderobs.New(orderapp.NewService(ordermemory.NewRepository()))
	shipping := shippingobs.New(shippingapp.NewService(
		shippingmemory.NewRepository(),
		shippingcache.NewRouteCache(shippingcache.DefaultTTL),
		shippingapp.WithOrderLookup(orders),
	))
	router := storefrontserver.NewRouter(storefrontserver.ApiHandleFunctions{
		OrderAPI:    storefrontserver.NewOrderAPI(orders),
		ShipmentAPI: storefrontserver.NewShipmentAPI(shipping, shippingworkflows.NewInlineRouteWorkflows(shipping)),
	})

	a.mu.Lock()
	defer a.mu.Unlock()
	a.orders = orders
	a.shipping = shipping
	a.router = router
}

func (a *contractProviderApp) seedOrder(t testing.TB, id int64) {
	t.Helper()
	order, err := orderdomain.NewOrder(id, decimal.RequireFromString("49.90"),
		orderdomain.Address{Recipient: "Pact Customer", Line1: "1 Contract Way", City: "Berlin", Country: "DE"},
		[]string{"SKU-PACT"}, time.Now().UTC())
	require.NoError(t, err)

	a.mu.RLock()
	orders := a.orders
	a.mu.RUnlock()
	_, err = orders.PlaceOrder(context.Background(), order)
	require.NoError(t, err)
}

func (a *contractProviderApp) seedRoute(t testing.TB, orderID int64, names ...string) {
	t.Helper()
	stops := make([]shippingdomain.StopDescriptor, 0, len(names))
	for _, name := range names {
		stops = append(stops, shippingdomain.StopDescriptor{Name: name})
	}

	a.mu.RLock()
	shipping := a.shipping
	a.mu.RUnlock()
	_, err := shipping.BuildRoute(context.Background(), orderID, stops)
	require.NoError(t, err)
}
