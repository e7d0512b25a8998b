package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
)

var (
	ErrNotFound      = errors.New("shipment step not found")
	ErrOrderNotFound = errors.New("order not found")
)

// Repository persists shipment steps.
type Repository interface {
	// ReplaceRoute atomically swaps the order's steps for the supplied ones and returns them persisted.
	ReplaceRoute(ctx context.Context, orderID int64, steps []domain.ShipmentStep) ([]domain.ShipmentStep, error)
	// ListByOrder returns the order's steps sorted by position.
	ListByOrder(ctx context.Context, orderID int64) ([]domain.ShipmentStep, error)
	GetByID(ctx context.Context, id int64) (*domain.ShipmentStep, error)
	Save(ctx context.Context, step *domain.ShipmentStep) (*domain.ShipmentStep, error)
	Delete(ctx context.Context, id int64) error
	// AdvanceNext marks the lowest-position unreached step as reached in one atomic operation.
	// It returns nil when every step is reached or the order has none.
	AdvanceNext(ctx context.Context, orderID int64, reachedAt time.Time) (*domain.ShipmentStep, error)
}

// OrderLookup resolves whether an order exists before a route is seeded for it.
type OrderLookup interface {
	Exists(ctx context.Context, orderID int64) (bool, error)
}
