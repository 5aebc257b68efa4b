package broker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"canyon-booking/internal/pkg/config"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase/events"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	consumerPrefetch = 50
	maxBackoff       = 30 * time.Second
)

// Handler processes one consumed event. A returned error rejects the message
// without requeueing it.
type Handler func(ctx context.Context, ev events.Event) error

type Consumer struct {
	url     string
	queue   string
	handler Handler
	logger  *slog.Logger
}

func NewConsumer(cfg config.BrokerConfig, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{url: cfg.URL, queue: cfg.Queue, handler: handler, logger: logger}
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err == nil {
			backoff = time.Second
			err = c.consume(ctx, conn)
			_ = conn.Close()
		}
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("consumer disconnected, retrying", "error", err.Error(), "backoff", backoff.String())

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return errs.Wrap(err, "open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		c.logger.Warn("set QoS failed", "error", err.Error())
	}
	if err := declareQueue(ch, c.queue); err != nil {
		return err
	}
	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return errs.Wrap(err, "start consuming")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return errs.New("deliveries channel closed")
			}
			c.process(ctx, d)
		}
	}
}

func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	var ev events.Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		c.logger.Error("discarding undecodable message", "message_id", d.MessageId, "error", err.Error())
		_ = d.Nack(false, false)
		return
	}
	if err := c.handler(ctx, ev); err != nil {
		c.logger.Error("event handling failed", "event_id", ev.ID, "type", ev.Type.String(), "error", err.Error())
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
