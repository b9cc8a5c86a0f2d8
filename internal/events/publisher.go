package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"bukka/internal/checkout"
)

const publishTimeout = 10 * time.Second

var errNoConnection = errors.New("no rabbitmq connection")

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
}

// opener hands out a usable channel, reconnecting if it has to.
type opener interface {
	openChannel() (channel, error)
}

// Publisher sends checkout events to RabbitMQ.
type Publisher struct {
	mu   sync.Mutex
	conn opener
	ch   channel
	log  *zap.Logger
}

func NewPublisher(conn *Connection, log *zap.Logger) *Publisher {
	return &Publisher{conn: conn, log: log}
}

// RoutingKey is order.placed.<cash|verified|unverified|acknowledged>.
func RoutingKey(e checkout.OrderPlacedEvent) string {
	switch {
	case e.PaymentMethod != string(checkout.PaymentTransfer):
		return "order.placed.cash"
	case e.Verified:
		return "order.placed.verified"
	case e.PaymentConfirmed:
		return "order.placed.acknowledged"
	default:
		return "order.placed.unverified"
	}
}

// OrderPlaced implements checkout.EventSink.
func (p *Publisher) OrderPlaced(ctx context.Context, e checkout.OrderPlacedEvent) error {
	return p.publish(ctx, RoutingKey(e), e)
}

func (p *Publisher) publish(ctx context.Context, key string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, Exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}

	p.log.Debug("event published", zap.String("routing_key", key), zap.Int("size", len(body)))
	return nil
}

// channelLocked reuses the last channel until the broker closes it.
func (p *Publisher) channelLocked() (channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil {
		return nil, errNoConnection
	}
	ch, err := p.conn.openChannel()
	if err != nil {
		return nil, err
	}
	if p.ch != nil {
		p.log.Info("rabbitmq channel reopened")
	}
	p.ch = ch
	return ch, nil
}

// Nop discards events. It stands in when no broker is configured.
type Nop struct{}

func (Nop) OrderPlaced(context.Context, checkout.OrderPlacedEvent) error { return nil }
