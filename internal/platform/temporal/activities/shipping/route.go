package shipping

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	shippingapp "github.com/Apurer/storefront-tracking/internal/domains/shipping/application"
	shippingdomain "github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	shippingports "github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
)

const (
	// BuildRouteActivityName seeds the route of an order.
	BuildRouteActivityName = "shipping.activities.BuildRoute"

	// InvalidRouteErrorType marks stops rejected by validation.
	InvalidRouteErrorType = "shipping.InvalidRoute"
	// OrderNotFoundErrorType marks routes requested for an unknown order.
	OrderNotFoundErrorType = "shipping.OrderNotFound"
)

// RouteSeedInput is the payload carried from the workflow to the activity.
type RouteSeedInput struct {
	OrderID int64
	Stops   []shippingdomain.StopDescriptor
}

// Activities groups activities that operate on the shipping bounded context.
type Activities struct {
	service shippingports.Service
}

// NewActivities wires the tracking service into the Temporal activities bundle.
func NewActivities(service shippingports.Service) *Activities {
	return &Activities{service: service}
}

// BuildRoute replaces the order's route. Route replacement is transactional, so retries are safe.
func (a *Activities) BuildRoute(ctx context.Context, input RouteSeedInput) ([]shippingdomain.ShipmentStep, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("build route activity not initialized", "orderId", input.OrderID)
		return nil, errors.New("build route activity not initialized")
	}
	logger.Info("BuildRoute activity started", "orderId", input.OrderID, "stops", len(input.Stops))
	route, err := a.service.BuildRoute(ctx, input.OrderID, input.Stops)
	if err != nil {
		logger.Error("BuildRoute activity failed", "orderId", input.OrderID, "error", err)
		switch {
		case errors.Is(err, shippingapp.ErrInvalidInput):
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), InvalidRouteErrorType, err)
		case errors.Is(err, shippingports.ErrOrderNotFound):
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), OrderNotFoundErrorType, err)
		}
		return nil, err
	}
	logger.Info("BuildRoute activity completed", "orderId", input.OrderID, "steps", len(route))
	return route, nil
}
