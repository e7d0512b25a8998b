package shipping

import (
	"go.temporal.io/sdk/workflow"

	shippingdomain "github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	shippingactivities "github.com/Apurer/storefront-tracking/internal/platform/temporal/activities/shipping"
	"github.com/Apurer/storefront-tracking/internal/platform/temporal/sequences"
)

const (
	// RouteSeedingWorkflowName is the public identifier for registering the workflow.
	RouteSeedingWorkflowName = "shipping.workflows.RouteSeeding"
	// ShipmentTaskQueue is the queue consumed by the worker processing shipment workflows.
	ShipmentTaskQueue = "SHIPMENT_TRACKING"
)

// RouteSeedingWorkflowInput captures the payload required to seed a route.
type RouteSeedingWorkflowInput struct {
	Command shippingactivities.RouteSeedInput
	TraceID string
}

// RouteSeedingWorkflow seeds the delivery route of an order.
func RouteSeedingWorkflow(ctx workflow.Context, input RouteSeedingWorkflowInput) ([]shippingdomain.ShipmentStep, error) {
	logger := workflow.GetLogger(ctx)
	orderID := input.Command.OrderID
	logger.Info("RouteSeedingWorkflow started", withTraceID(input.TraceID, "orderId", orderID)...)
	route, err := sequences.RunRouteSeedingSequence(ctx, input.Command)
	if err != nil {
		logger.Error("RouteSeedingWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return nil, err
	}
	logger.Info("RouteSeedingWorkflow completed", withTraceID(input.TraceID, "orderId", orderID, "steps", len(route))...)
	return route, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
