package storefrontserver

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	shippinghttpmapper "github.com/Apurer/storefront-tracking/internal/domains/shipping/adapters/http/mapper"
	shippingdomain "github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	shippingports "github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
)

// ShipmentAPI wires HTTP transport with the shipment tracking service and route workflows.
type ShipmentAPI struct {
	service   shippingports.Service
	workflows shippingports.WorkflowOrchestrator
}

// NewShipmentAPI creates a ShipmentAPI. workflows may be nil, in which case routes are built inline.
func NewShipmentAPI(service shippingports.Service, workflows shippingports.WorkflowOrchestrator) ShipmentAPI {
	return ShipmentAPI{service: service, workflows: workflows}
}

// Post /v1/orders/:orderId/shipment/route
// Replaces the delivery route of an order
func (api *ShipmentAPI) BuildRoute(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload shippinghttpmapper.BuildRouteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	route, err := api.buildRoute(c.Request.Context(), orderID, shippinghttpmapper.ToStopDescriptors(payload.Stops))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shippinghttpmapper.FromDomainRoute(route))
}

func (api *ShipmentAPI) buildRoute(ctx context.Context, orderID int64, stops []shippingdomain.StopDescriptor) ([]shippingdomain.ShipmentStep, error) {
	if api.workflows != nil {
		return api.workflows.SeedRoute(ctx, orderID, stops)
	}
	return api.service.BuildRoute(ctx, orderID, stops)
}

// Get /v1/orders/:orderId/shipment/route
// Lists the route of an order ordered by position
func (api *ShipmentAPI) GetRoute(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	route, err := api.service.GetRoute(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shippinghttpmapper.FromDomainRoute(route))
}

// Get /v1/orders/:orderId/shipment/progress
// Summarises how far along its route an order is
func (api *ShipmentAPI) GetProgress(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	progress, err := api.service.GetProgress(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shippinghttpmapper.FromDomainProgress(progress))
}

// Post /v1/orders/:orderId/shipment/advance
// Marks the next unreached step as reached
func (api *ShipmentAPI) Advance(c *gin.Context) {
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	advanced, err := api.service.Advance(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shippinghttpmapper.AdvanceResult{Advanced: advanced})
}

// Patch /v1/shipment-steps/:stepId
// Applies a partial update to a step
func (api *ShipmentAPI) UpdateStep(c *gin.Context) {
	stepID, ok := parseIDParam(c, "stepId")
	if !ok {
		return
	}
	var payload shippinghttpmapper.StepPatch
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.UpdateStep(c.Request.Context(), stepID, shippinghttpmapper.ToDomainPatch(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shippinghttpmapper.FromDomainStep(updated))
}

// Post /v1/shipment-steps/:stepId/toggle
// Flips the reached flag of a step
func (api *ShipmentAPI) ToggleReached(c *gin.Context) {
	stepID, ok := parseIDParam(c, "stepId")
	if !ok {
		return
	}
	updated, err := api.service.ToggleReached(c.Request.Context(), stepID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shippinghttpmapper.FromDomainStep(updated))
}

// Delete /v1/shipment-steps/:stepId
// Removes a single step without renumbering the rest
func (api *ShipmentAPI) DeleteStep(c *gin.Context) {
	stepID, ok := parseIDParam(c, "stepId")
	if !ok {
		return
	}
	if err := api.service.DeleteStep(c.Request.Context(), stepID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		respondBadRequest(c, err)
		return 0, false
	}
	return id, true
}
