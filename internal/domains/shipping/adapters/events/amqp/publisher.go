package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
	"github.com/Apurer/storefront-tracking/internal/domains/shipping/ports"
)

// DefaultExchange receives every shipment event, routed by event name.
const DefaultExchange = "shipment.events"

var _ ports.EventPublisher = (*Publisher)(nil)

// Envelope is the JSON body of every published message.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OrderID    int64           `json:"orderId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// Publisher sends shipment events to a RabbitMQ topic exchange.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	logger   *slog.Logger
}

// Dial connects to the broker and declares the durable topic exchange.
func Dial(url, exchange string, logger *slog.Logger) (*Publisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("amqp url is empty")
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
	return &Publisher{conn: conn, ch: ch, exchange: exchange, logger: logger}, nil
}

func openExchange(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return conn, ch, nil
}

// Publish sends a persistent message routed by the event name.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if p == nil || p.ch == nil {
		return errors.New("amqp publisher not configured")
	}
	msg, err := NewPublishing(event, uuid.NewString())
	if err != nil {
		return err
	}
	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, p.exchange, event.EventName(), false, false, msg)
	p.mu.Unlock()
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish shipment event",
			slog.String("event", event.EventName()),
			slog.Int64("order.id", event.AggregateOrderID()),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Close releases the channel and the connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	var errs error
	if p.ch != nil {
		errs = errors.Join(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = errors.Join(errs, p.conn.Close())
	}
	return errs
}

// NewPublishing encodes the event in its envelope.
func NewPublishing(event domain.Event, id string) (amqp.Publishing, error) {
	if event == nil {
		return amqp.Publishing{}, errors.New("event is nil")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode %s: %w", event.EventName(), err)
	}
	body, err := json.Marshal(Envelope{
		ID:         id,
		Type:       event.EventName(),
		OrderID:    event.AggregateOrderID(),
		OccurredAt: event.OccurredAt().UTC(),
		Data:       data,
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode envelope: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    id,
		Type:         event.EventName(),
		Timestamp:    event.OccurredAt().UTC(),
		Body:         body,
	}, nil
}
