package ports

import (
	"context"

	"github.com/Apurer/storefront-tracking/internal/domains/orders/domain"
)

// Service exposes order use cases to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
	StatusSummary(ctx context.Context) (map[string]int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
