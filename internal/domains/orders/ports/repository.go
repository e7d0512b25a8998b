package ports

import (
	"context"
	"errors"

	"github.com/Apurer/storefront-tracking/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// Repository persists orders. Deleted orders are hidden from every read.
type Repository interface {
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Order, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
