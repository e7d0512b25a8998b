package ports

import (
	"context"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
)

// WorkflowOrchestrator seeds routes through durable workflows when available.
type WorkflowOrchestrator interface {
	SeedRoute(ctx context.Context, orderID int64, stops []domain.StopDescriptor) ([]domain.ShipmentStep, error)
}
