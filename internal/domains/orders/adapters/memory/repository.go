package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/storefront-tracking/internal/domains/orders/domain"
	"github.com/Apurer/storefront-tracking/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	orders map[int64]domain.Order
	nextID int64
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{orders: map[int64]domain.Order{}, now: time.Now}
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	if clone.PlacedAt.IsZero() {
		clone.PlacedAt = r.now().UTC()
	}
	clone.DeletedAt = nil
	r.orders[clone.ID] = clone
	out := clone.Clone()
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok || order.DeletedAt != nil {
		return nil, ports.ErrNotFound
	}
	out := order.Clone()
	return &out, nil
}

// Delete marks the order deleted, mirroring the soft delete of the SQL adapter.
func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.DeletedAt != nil {
		return ports.ErrNotFound
	}
	deletedAt := r.now().UTC()
	order.DeletedAt = &deletedAt
	r.orders[id] = order
	return nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if order.DeletedAt != nil {
			continue
		}
		clone := order.Clone()
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *Repository) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	return ok && order.DeletedAt == nil, nil
}
