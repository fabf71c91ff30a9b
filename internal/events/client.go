package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/username/budget-planner/internal/budget"
)

const publishTimeout = 5 * time.Second

// Client publishes budget events to a RabbitMQ direct exchange
type Client struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	exchange   string
	routingKey string
	logger     *zap.Logger
}

// NewClient dials the broker and declares the exchange and queue
func NewClient(url, exchange, routingKey string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &Client{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}

	if err := c.setup(); err != nil {
		c.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return c, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchange, // name
		"direct",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.routingKey, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := c.channel.QueueBind(c.routingKey, c.routingKey, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishTransactionPlanned publishes a persistent JSON message for t
func (c *Client) PublishTransactionPlanned(ctx context.Context, t budget.Transaction) error {
	body, err := NewTransactionPlannedMessage(t).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchange,
		c.routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.Debug("Published transaction planned message",
		zap.String("id", t.ID),
		zap.String("exchange", c.exchange),
		zap.String("routing_key", c.routingKey))

	return nil
}

// Close closes the channel and connection
func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

// PublishTransactionPlanned does nothing
func (NopPublisher) PublishTransactionPlanned(context.Context, budget.Transaction) error {
	return nil
}

// Close does nothing
func (NopPublisher) Close() error {
	return nil
}
