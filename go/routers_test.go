package storefrontserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	ordermemory "github.com/Apurer/storefront-tracking/internal/domains/orders/adapters/memory"
	orderapp "github.com/Apurer/storefront-tracking/internal/domains/orders/application"
	shippingcache "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/cache"
	shippinghttpmapper "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/http/mapper"
	shippingmemory "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/memory"
	shippingworkflows "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/workflows"
	shippingapp "github.com/Apurer/storefront-tracking/internal/domains/shipping/application"
	platformmetrics "github.com/Apurer/storefront-tracking/internal/platform/metrics"
	apierrors "github.com/Apurer/storefront-tracking/internal/shared/errors"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	orders := orderapp.NewService(ordermemory.NewRepository())
	shipping := shippingapp.NewService(
		shippingmemory.NewRepository(),
		shippingcache.NewRouteCache(0),
		shippingapp.WithOrderLookup(orders),
	)
	return NewRouter(ApiHandleFunctions{
		OrderAPI:    NewOrderAPI(orders),
		ShipmentAPI: NewShipmentAPI(shipping, shippingworkflows.NewInlineRouteWorkflows(shipping)),
	}, WithMetrics(platformmetrics.New()))
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func placeOrder(t *testing.T, router http.Handler, id int64) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/v1/orders",
		fmt.Sprintf(`{"id":%d,"total":"25.00","shippingAddress":{"recipient":"Ada"},"itemSkus":["SKU-1"]}`, id))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) apierrors.ProblemDetail {
	t.Helper()
	require.Equal(t, apierrors.ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	return problem
}

func TestShipmentTrackingFlow(t *testing.T) {
	router := newTestRouter(t)
	placeOrder(t, router, 42)

	rec := do(t, router, http.MethodGet, "/v1/orders/42/shipment/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"percentage":0,"label":"No tracking"}`, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/v1/orders/42/shipment/route",
		`{"stops":[{"name":"Warehouse","lat":52.52,"lng":13.405},{"name":"Hub"},{"name":"Door"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var route []shippinghttpmapper.Step
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &route))
	require.Len(t, route, 3)
	require.Equal(t, 1, route[0].Position)
	require.Equal(t, "13.405", route[0].Longitude.String())

	rec = do(t, router, http.MethodPost, "/v1/orders/42/shipment/advance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"advanced":true}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/v1/orders/42/shipment/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"percentage":33,"currentStep":1,"totalSteps":3,"isDelivered":false}`, rec.Body.String())

	rec = do(t, router, http.MethodPatch, fmt.Sprintf("/v1/shipment-steps/%d", route[1].ID), `{"statusDescription":"sorting"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var step shippinghttpmapper.Step
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
	require.Equal(t, "sorting", *step.StatusDescription)

	rec = do(t, router, http.MethodPost, fmt.Sprintf("/v1/shipment-steps/%d/toggle", route[2].ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
	require.True(t, step.IsReached)

	rec = do(t, router, http.MethodGet, "/v1/orders/42/shipment/progress", "")
	require.JSONEq(t, `{"percentage":66,"currentStep":2,"totalSteps":3,"isDelivered":true}`, rec.Body.String())

	rec = do(t, router, http.MethodDelete, fmt.Sprintf("/v1/shipment-steps/%d", route[1].ID), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/orders/42/shipment/route", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &route))
	require.Len(t, route, 2)
	require.Equal(t, 3, route[1].Position)
}

func TestShipmentErrors(t *testing.T) {
	router := newTestRouter(t)
	placeOrder(t, router, 42)

	rec := do(t, router, http.MethodPost, "/v1/orders/41/shipment/route", `{"stops":[{"name":"A"}]}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, apierrors.TypeNotFound, decodeProblem(t, rec).Type)

	rec = do(t, router, http.MethodPost, "/v1/orders/42/shipment/route", `{"stops":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, apierrors.TypeBadRequest, decodeProblem(t, rec).Type)

	rec = do(t, router, http.MethodPost, "/v1/orders/42/shipment/route", `{"stops":[{"name":"  "}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, apierrors.TypeValidation, decodeProblem(t, rec).Type)

	rec = do(t, router, http.MethodPatch, "/v1/shipment-steps/999", `{"locationName":"X"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	problem := decodeProblem(t, rec)
	require.Equal(t, "/v1/shipment-steps/999", problem.Instance)
	require.Equal(t, "shipmentStep", problem.Extensions["resourceType"])

	rec = do(t, router, http.MethodPost, "/v1/shipment-steps/999/toggle", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, "/v1/shipment-steps/999", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/orders/abc/shipment/route", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/orders/77/shipment/advance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"advanced":false}`, rec.Body.String())
}

func TestUpdateStepClearsReachedAt(t *testing.T) {
	router := newTestRouter(t)
	placeOrder(t, router, 42)

	rec := do(t, router, http.MethodPost, "/v1/orders/42/shipment/route", `{"stops":[{"name":"Warehouse","isReached":true},{"name":"Door"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var route []shippinghttpmapper.Step
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &route))
	require.NotNil(t, route[0].ReachedAt)

	path := fmt.Sprintf("/v1/shipment-steps/%d", route[0].ID)
	rec = do(t, router, http.MethodPatch, path, `{"isReached":false,"clear":["reachedAt"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var step shippinghttpmapper.Step
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &step))
	require.False(t, step.IsReached)
	require.Nil(t, step.ReachedAt)

	rec = do(t, router, http.MethodPatch, path, `{"clear":["locationName"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, apierrors.TypeBadRequest, decodeProblem(t, rec).Type)

	rec = do(t, router, http.MethodPatch, path, `{"reachedAt":"2024-06-01T10:00:00Z","clear":["reachedAt"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, apierrors.TypeValidation, decodeProblem(t, rec).Type)
}

func TestOrderEndpoints(t *testing.T) {
	router := newTestRouter(t)
	placeOrder(t, router, 1)
	placeOrder(t, router, 2)

	rec := do(t, router, http.MethodGet, "/v1/orders/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var order map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.Equal(t, "pending", order["statusName"])
	require.Equal(t, "unpaid", order["paymentStatusName"])

	rec = do(t, router, http.MethodPut, "/v1/orders/1/status", `{"status":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	require.Equal(t, "shipped", order["statusName"])

	rec = do(t, router, http.MethodPut, "/v1/orders/1/payment-status", `{"status":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPut, "/v1/orders/1/status", `{"status":42}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, apierrors.TypeValidation, decodeProblem(t, rec).Type)

	rec = do(t, router, http.MethodGet, "/v1/order-summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"pending":1,"shipped":1}`, rec.Body.String())

	rec = do(t, router, http.MethodDelete, "/v1/orders/2", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, router, http.MethodGet, "/v1/orders/2", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	rec = do(t, router, http.MethodPost, "/v1/orders", `{"id":3,"total":"-1","shippingAddress":{"recipient":"Ada"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, apierrors.TypeValidation, decodeProblem(t, rec).Type)
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "http_requests_total")
}
