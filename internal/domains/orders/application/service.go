package application

import (
	"context"
	"errors"

	"github.com/Apurer/storefront-tracking/internal/domains/orders/domain"
	"github.com/Apurer/storefront-tracking/internal/domains/orders/ports"
)

// Service orchestrates order use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, order)
}

func (s *Service) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.UpdateStatus(status); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, order)
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.UpdatePaymentStatus(status); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, order)
}

// DeleteOrder soft-deletes the order; its shipment steps stay in storage.
func (s *Service) DeleteOrder(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// StatusSummary counts live orders per status name.
func (s *Service) StatusSummary(ctx context.Context) (map[string]int64, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := map[string]int64{}
	for _, order := range orders {
		result[order.Status.String()]++
	}
	return result, nil
}

// Exists satisfies the shipping context's order lookup.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

var _ ports.Service = (*Service)(nil)
