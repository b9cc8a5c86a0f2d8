package events

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// Exchange receives every checkout event, keyed by kind.
	Exchange = "checkout_events"

	// ReconciliationQueue collects transfers placed before the gateway
	// confirmed them.
	ReconciliationQueue = "payment_reconciliation"

	dialAttempts = 5
)

// Connection owns one AMQP connection and the channel publishers use.
type Connection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	log     *zap.Logger
}

// Dial connects with a short linear backoff and declares the topology.
func Dial(url string, log *zap.Logger) (*Connection, error) {
	c := &Connection{url: url, log: log}

	var err error
	for i := 0; i < dialAttempts; i++ {
		if err = c.connect(); err == nil {
			return c, nil
		}
		if i < dialAttempts-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			log.Warn("rabbitmq connection failed, retrying", zap.Duration("wait", wait), zap.Error(err))
			time.Sleep(wait)
		}
	}
	return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", dialAttempts, err)
}

func (c *Connection) connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	if err := declare(ch); err != nil {
		ch.Close()
		conn.Close()
		return err
	}
	c.conn, c.channel = conn, ch
	return nil
}

func declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}
	if _, err := ch.QueueDeclare(ReconciliationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", ReconciliationQueue, err)
	}
	if err := ch.QueueBind(ReconciliationQueue, "order.placed.unverified", Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", ReconciliationQueue, err)
	}
	return nil
}

func (c *Connection) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

// openChannel returns the open channel. A channel the broker closed is
// replaced on the same connection; a dropped connection is redialled.
func (c *Connection) openChannel() (channel, error) {
	if c.IsClosed() {
		if err := c.Reconnect(); err != nil {
			return nil, fmt.Errorf("reconnect to rabbitmq: %w", err)
		}
		return c.channel, nil
	}
	if c.channel == nil || c.channel.IsClosed() {
		ch, err := c.conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("reopen rabbitmq channel: %w", err)
		}
		c.channel = ch
	}
	return c.channel, nil
}

// Reconnect replaces a dropped connection.
func (c *Connection) Reconnect() error {
	c.close()
	return c.connect()
}

func (c *Connection) Close() error {
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
