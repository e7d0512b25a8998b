package storefrontserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/storefront-tracking/internal/domains/orders/adapters/http/mapper"
	orderdomain "github.com/Apurer/storefront-tracking/internal/domains/orders/domain"
	orderports "github.com/Apurer/storefront-tracking/internal/domains/orders/ports"
	apierrors "github.com/Apurer/storefront-tracking/internal/shared/errors"
)

var errMissingStatus = errors.New("status is required")

// OrderAPI wires HTTP transport with the orders service.
type OrderAPI struct {
	service orderports.Service
	now     func() time.Time
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service orderports.Service) OrderAPI {
	return OrderAPI{service: service, now: time.Now}
}

// Post /v1/orders
// Places a pending, unpaid order
func (api *OrderAPI) PlaceOrder(c *gin.Context) {
	var payload orderhttpmapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	order, err := orderhttpmapper.ToDomainOrder(payload, api.now().UTC())
	if err != nil {
		apierrors.Respond(c, apierrors.ErrValidation.WithDetail(err.Error()))
		return
	}
	saved, err := api.service.PlaceOrder(c.Request.Context(), order)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromDomainOrder(saved))
}

// Get /v1/orders
// Lists orders that have not been deleted
func (api *OrderAPI) ListOrders(c *gin.Context) {
	orders, err := api.service.ListOrders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// Get /v1/orders/:orderId
// Finds an order by id
func (api *OrderAPI) GetOrderByID(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.GetOrderByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /v1/orders/:orderId/status
// Moves an order to another fulfilment status
func (api *OrderAPI) UpdateStatus(c *gin.Context) {
	id, status, ok := api.bindStatus(c)
	if !ok {
		return
	}
	updated, err := api.service.UpdateStatus(c.Request.Context(), id, orderdomain.Status(status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(updated))
}

// Put /v1/orders/:orderId/payment-status
// Records a payment status change
func (api *OrderAPI) UpdatePaymentStatus(c *gin.Context) {
	id, status, ok := api.bindStatus(c)
	if !ok {
		return
	}
	updated, err := api.service.UpdatePaymentStatus(c.Request.Context(), id, orderdomain.PaymentStatus(status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(updated))
}

// Delete /v1/orders/:orderId
// Soft-deletes an order
func (api *OrderAPI) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	if err := api.service.DeleteOrder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/order-summary
// Counts orders per status
func (api *OrderAPI) StatusSummary(c *gin.Context) {
	summary, err := api.service.StatusSummary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (api *OrderAPI) bindStatus(c *gin.Context) (int64, int, bool) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return 0, 0, false
	}
	var payload orderhttpmapper.StatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return 0, 0, false
	}
	if payload.Status == nil {
		respondBadRequest(c, errMissingStatus)
		return 0, 0, false
	}
	return id, *payload.Status, true
}
