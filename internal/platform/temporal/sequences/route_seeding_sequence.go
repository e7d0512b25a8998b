package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	shippingdomain "github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	shippingactivities "github.com/Apurer/storefront-tracking/internal/platform/temporal/activities/shipping"
)

// RunRouteSeedingSequence executes the activities needed to seed an order's route.
func RunRouteSeedingSequence(ctx workflow.Context, input shippingactivities.RouteSeedInput) ([]shippingdomain.ShipmentStep, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("route seeding sequence started", "orderId", input.OrderID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var route []shippingdomain.ShipmentStep
	err := workflow.ExecuteActivity(ctx, shippingactivities.BuildRouteActivityName, input).Get(ctx, &route)
	if err != nil {
		logger.Error("route seeding sequence failed", "orderId", input.OrderID, "error", err)
		return nil, err
	}
	logger.Info("route seeding sequence completed", "orderId", input.OrderID, "steps", len(route))
	return route, nil
}
