package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	"github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory shipment step store for development and tests.
type Repository struct {
	mu     sync.RWMutex
	steps  map[int64]domain.ShipmentStep
	nextID int64
	now    func() time.Time
}

func NewRepository() *Repository {
	return &Repository{steps: map[int64]domain.ShipmentStep{}, now: time.Now}
}

// WithClock overrides the time source used for row timestamps.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) ReplaceRoute(_ context.Context, orderID int64, steps []domain.ShipmentStep) ([]domain.ShipmentStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, step := range r.steps {
		if step.OrderID == orderID {
			delete(r.steps, id)
		}
	}
	now := r.now().UTC()
	saved := make([]domain.ShipmentStep, 0, len(steps))
	for _, step := range steps {
		clone := step.Clone()
		r.nextID++
		clone.ID = r.nextID
		clone.OrderID = orderID
		clone.CreatedAt = now
		clone.UpdatedAt = now
		r.steps[clone.ID] = clone
		saved = append(saved, clone.Clone())
	}
	return saved, nil
}

func (r *Repository) ListByOrder(_ context.Context, orderID int64) ([]domain.ShipmentStep, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked(orderID), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.ShipmentStep, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	step, ok := r.steps[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := step.Clone()
	return &clone, nil
}

func (r *Repository) Save(_ context.Context, step *domain.ShipmentStep) (*domain.ShipmentStep, error) {
	if step == nil {
		return nil, errors.New("shipment step is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.steps[step.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := step.Clone()
	clone.OrderID = existing.OrderID
	clone.CreatedAt = existing.CreatedAt
	clone.UpdatedAt = r.now().UTC()
	r.steps[clone.ID] = clone
	out := clone.Clone()
	return &out, nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.steps[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.steps, id)
	return nil
}

// AdvanceNext holds the write lock across the read and the write, so concurrent calls never reach the same step.
func (r *Repository) AdvanceNext(_ context.Context, orderID int64, reachedAt time.Time) (*domain.ShipmentStep, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next, ok := domain.NextUnreached(r.listLocked(orderID))
	if !ok {
		return nil, nil
	}
	next.MarkReached(reachedAt)
	next.UpdatedAt = r.now().UTC()
	r.steps[next.ID] = next
	out := next.Clone()
	return &out, nil
}

func (r *Repository) listLocked(orderID int64) []domain.ShipmentStep {
	route := make([]domain.ShipmentStep, 0)
	for _, step := range r.steps {
		if step.OrderID == orderID {
			route = append(route, step.Clone())
		}
	}
	domain.SortRoute(route)
	return route
}
