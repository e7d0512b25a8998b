package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
)

// InvalidationBinding matches every shipment event on the exchange.
const InvalidationBinding = "shipment.#"

// CacheInvalidator drops cached routes when any process publishes a change to them.
// Each instance consumes from its own exclusive, auto-deleted queue.
type CacheInvalidator struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	deliveries <-chan amqp.Delivery
	cache      ports.RouteCache
	logger     *slog.Logger
}

// ListenForInvalidations binds a private queue to the shipment exchange.
func ListenForInvalidations(url, exchange string, cache ports.RouteCache, logger *slog.Logger) (*CacheInvalidator, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("amqp url is empty")
	}
	if cache == nil {
		return nil, errors.New("route cache is nil")
	}
	if strings.TrimSpace(exchange) == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	conn, ch, err := openExchange(url, exchange)
	if err != nil {
		return nil, err
	}
	fail := func(err error) (*CacheInvalidator, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	queue, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fail(fmt.Errorf("declare invalidation queue: %w", err))
	}
	if err := ch.QueueBind(queue.Name, InvalidationBinding, exchange, false, nil); err != nil {
		return fail(fmt.Errorf("bind invalidation queue: %w", err))
	}
	deliveries, err := ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("consume invalidation queue: %w", err))
	}
	return &CacheInvalidator{conn: conn, ch: ch, deliveries: deliveries, cache: cache, logger: logger}, nil
}

// Run invalidates routes until ctx is done or the broker closes the delivery channel.
func (i *CacheInvalidator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case delivery, ok := <-i.deliveries:
			if !ok {
				i.logger.Warn("shipment event stream closed, route cache relies on TTL")
				return
			}
			if err := InvalidateFromMessage(ctx, i.cache, delivery.Body); err != nil {
				i.logger.LogAttrs(ctx, slog.LevelWarn, "ignored shipment event",
					slog.String("messageId", delivery.MessageId),
					slog.String("error", err.Error()))
			}
		}
	}
}

// Close releases the channel and the connection.
func (i *CacheInvalidator) Close() error {
	if i == nil {
		return nil
	}
	var errs error
	if i.ch != nil {
		errs = errors.Join(errs, i.ch.Close())
	}
	if i.conn != nil {
		errs = errors.Join(errs, i.conn.Close())
	}
	return errs
}

// InvalidateFromMessage drops the cached route of the order named in an event envelope.
func InvalidateFromMessage(ctx context.Context, cache ports.RouteCache, body []byte) error {
	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.OrderID <= 0 {
		return fmt.Errorf("envelope %q carries no order id", envelope.ID)
	}
	return cache.Invalidate(ctx, envelope.OrderID)
}
