package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	platformmetrics "github.com/Apurer/storefront-tracking/internal/platform/metrics"
)

// Route describes a single endpoint of the API.
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions bundles the handlers served by the router.
type ApiHandleFunctions struct {
	OrderAPI    OrderAPI
	ShipmentAPI ShipmentAPI
}

type routerOptions struct {
	serviceName string
	metrics     *platformmetrics.HTTPMetrics
}

// RouterOption customises NewRouter.
type RouterOption func(*routerOptions)

// WithTracing installs the otelgin middleware under the given service name.
func WithTracing(serviceName string) RouterOption {
	return func(o *routerOptions) { o.serviceName = serviceName }
}

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m *platformmetrics.HTTPMetrics) RouterOption {
	return func(o *routerOptions) { o.metrics = m }
}

// NewRouter returns a gin engine serving every route of the API.
func NewRouter(handleFunctions ApiHandleFunctions, opts ...RouterOption) *gin.Engine {
	var options routerOptions
	for _, opt := range opts {
		opt(&options)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if options.serviceName != "" {
		router.Use(otelgin.Middleware(options.serviceName))
	}
	if options.metrics != nil {
		router.Use(options.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(options.metrics.Handler()))
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	for _, route := range getRoutes(handleFunctions) {
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

func getRoutes(h ApiHandleFunctions) []Route {
	return []Route{
		{"PlaceOrder", http.MethodPost, "/v1/orders", h.OrderAPI.PlaceOrder},
		{"ListOrders", http.MethodGet, "/v1/orders", h.OrderAPI.ListOrders},
		{"GetOrderByID", http.MethodGet, "/v1/orders/:orderId", h.OrderAPI.GetOrderByID},
		{"DeleteOrder", http.MethodDelete, "/v1/orders/:orderId", h.OrderAPI.DeleteOrder},
		{"UpdateOrderStatus", http.MethodPut, "/v1/orders/:orderId/status", h.OrderAPI.UpdateStatus},
		{"UpdatePaymentStatus", http.MethodPut, "/v1/orders/:orderId/payment-status", h.OrderAPI.UpdatePaymentStatus},
		{"OrderStatusSummary", http.MethodGet, "/v1/order-summary", h.OrderAPI.StatusSummary},
		{"BuildShipmentRoute", http.MethodPost, "/v1/orders/:orderId/shipment/route", h.ShipmentAPI.BuildRoute},
		{"GetShipmentRoute", http.MethodGet, "/v1/orders/:orderId/shipment/route", h.ShipmentAPI.GetRoute},
		{"GetShipmentProgress", http.MethodGet, "/v1/orders/:orderId/shipment/progress", h.ShipmentAPI.GetProgress},
		{"AdvanceShipment", http.MethodPost, "/v1/orders/:orderId/shipment/advance", h.ShipmentAPI.Advance},
		{"UpdateShipmentStep", http.MethodPatch, "/v1/shipment-steps/:stepId", h.ShipmentAPI.UpdateStep},
		{"ToggleShipmentStep", http.MethodPost, "/v1/shipment-steps/:stepId/toggle", h.ShipmentAPI.ToggleReached},
		{"DeleteShipmentStep", http.MethodDelete, "/v1/shipment-steps/:stepId", h.ShipmentAPI.DeleteStep},
	}
}
