package ports

import (
	"context"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
)

// EventPublisher delivers tracking notifications to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NoopPublisher drops every event.
var NoopPublisher EventPublisher = noopPublisher{}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.Event) error { return nil }
