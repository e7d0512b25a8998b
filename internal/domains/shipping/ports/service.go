package ports

import (
	"context"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
)

// Service exposes the shipment tracking use cases to adapters.
type Service interface {
	BuildRoute(ctx context.Context, orderID int64, stops []domain.StopDescriptor) ([]domain.ShipmentStep, error)
	Advance(ctx context.Context, orderID int64) (bool, error)
	GetRoute(ctx context.Context, orderID int64) ([]domain.ShipmentStep, error)
	GetProgress(ctx context.Context, orderID int64) (domain.Progress, error)
	UpdateStep(ctx context.Context, stepID int64, patch domain.StepPatch) (*domain.ShipmentStep, error)
	ToggleReached(ctx context.Context, stepID int64) (*domain.ShipmentStep, error)
	DeleteStep(ctx context.Context, stepID int64) error
}
