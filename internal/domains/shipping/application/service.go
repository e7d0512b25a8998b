package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	"github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
)

// Service implements route building, advancement and ad hoc step edits.
type Service struct {
	repo   ports.Repository
	cache  ports.RouteCache
	orders ports.OrderLookup
	events ports.EventPublisher
	now    func() time.Time
}

// Option customises the service.
type Option func(*Service)

// WithOrderLookup makes BuildRoute reject unknown orders.
func WithOrderLookup(orders ports.OrderLookup) Option {
	return func(s *Service) {
		s.orders = orders
	}
}

// WithEventPublisher wires the notification sink.
func WithEventPublisher(events ports.EventPublisher) Option {
	return func(s *Service) {
		if events != nil {
			s.events = events
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the tracking service. A nil cache disables memoization.
func NewService(repo ports.Repository, cache ports.RouteCache, opts ...Option) *Service {
	if cache == nil {
		cache = ports.NoopRouteCache
	}
	s := &Service{
		repo:   repo,
		cache:  cache,
		events: ports.NoopPublisher,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// BuildRoute seeds the order's route, replacing any previous one.
func (s *Service) BuildRoute(ctx context.Context, orderID int64, stops []domain.StopDescriptor) ([]domain.ShipmentStep, error) {
	now := s.now().UTC()
	route, err := domain.NewRoute(orderID, stops, now)
	if err != nil {
		return nil, mapError(err)
	}
	if s.orders != nil {
		exists, err := s.orders.Exists(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ports.ErrOrderNotFound
		}
	}
	saved, err := s.repo.ReplaceRoute(ctx, orderID, route)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.invalidate(ctx, orderID); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.RouteBuilt{
		BaseEvent:  domain.BaseEvent{OrderID: orderID, Timestamp: now},
		TotalSteps: len(saved),
	})
	return saved, nil
}

// Advance reaches the next step in position order. It reports false when nothing is left to reach.
func (s *Service) Advance(ctx context.Context, orderID int64) (bool, error) {
	now := s.now().UTC()
	step, err := s.repo.AdvanceNext(ctx, orderID, now)
	if err != nil {
		return false, err
	}
	if step == nil {
		return false, nil
	}
	if err := s.invalidate(ctx, orderID); err != nil {
		return true, err
	}
	s.publish(ctx, stepReached(*step, now))
	// delivered is raised only by the advance that reaches the final step
	if route, err := s.GetRoute(ctx, orderID); err == nil {
		if final, ok := domain.FinalStep(route); ok && final.ID == step.ID {
			s.publish(ctx, domain.ShipmentDelivered{
				BaseEvent:  domain.BaseEvent{OrderID: orderID, Timestamp: now},
				TotalSteps: len(route),
			})
		}
	}
	return true, nil
}

// GetRoute returns the ordered route, served from cache when possible.
func (s *Service) GetRoute(ctx context.Context, orderID int64) ([]domain.ShipmentStep, error) {
	route, err := s.cache.GetOrCompute(ctx, orderID, func(ctx context.Context) ([]domain.ShipmentStep, error) {
		steps, err := s.repo.ListByOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		domain.SortRoute(steps)
		return steps, nil
	})
	if err != nil {
		return nil, err
	}
	return domain.CloneRoute(route), nil
}

// GetProgress summarises the cached route.
func (s *Service) GetProgress(ctx context.Context, orderID int64) (domain.Progress, error) {
	route, err := s.GetRoute(ctx, orderID)
	if err != nil {
		return domain.Progress{}, err
	}
	return domain.CalculateProgress(route), nil
}

// UpdateStep merges the patch onto the stored step. Route ordering is not re-validated.
func (s *Service) UpdateStep(ctx context.Context, stepID int64, patch domain.StepPatch) (*domain.ShipmentStep, error) {
	step, err := s.repo.GetByID(ctx, stepID)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(step); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, step)
	if err != nil {
		return nil, err
	}
	if err := s.invalidate(ctx, saved.OrderID); err != nil {
		return nil, err
	}
	return saved, nil
}

// ToggleReached flips the reached flag of a single step without touching ReachedAt.
func (s *Service) ToggleReached(ctx context.Context, stepID int64) (*domain.ShipmentStep, error) {
	step, err := s.repo.GetByID(ctx, stepID)
	if err != nil {
		return nil, err
	}
	step.ToggleReached()
	saved, err := s.repo.Save(ctx, step)
	if err != nil {
		return nil, err
	}
	if err := s.invalidate(ctx, saved.OrderID); err != nil {
		return nil, err
	}
	if saved.IsReached {
		s.publish(ctx, stepReached(*saved, s.now().UTC()))
	}
	return saved, nil
}

// DeleteStep removes a step. Remaining positions are left untouched.
func (s *Service) DeleteStep(ctx context.Context, stepID int64) error {
	step, err := s.repo.GetByID(ctx, stepID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, stepID); err != nil {
		return err
	}
	return s.invalidate(ctx, step.OrderID)
}

func (s *Service) invalidate(ctx context.Context, orderID int64) error {
	if err := s.cache.Invalidate(ctx, orderID); err != nil {
		return fmt.Errorf("invalidate route cache for order %d: %w", orderID, err)
	}
	return nil
}

// publish is best-effort: a failed notification never fails the tracking mutation.
func (s *Service) publish(ctx context.Context, event domain.Event) {
	_ = s.events.Publish(ctx, event)
}

func stepReached(step domain.ShipmentStep, fallback time.Time) domain.StepReached {
	reachedAt := fallback
	if step.ReachedAt != nil {
		reachedAt = *step.ReachedAt
	}
	return domain.StepReached{
		BaseEvent:    domain.BaseEvent{OrderID: step.OrderID, Timestamp: fallback},
		StepID:       step.ID,
		Position:     step.Position,
		LocationName: step.LocationName,
		ReachedAt:    reachedAt,
	}
}

var _ ports.Service = (*Service)(nil)
