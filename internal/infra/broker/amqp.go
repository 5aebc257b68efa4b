package broker

import (
	"context"
	"encoding/json"
	"sync"

	"canyon-booking/internal/pkg/config"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/usecase/events"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPSink publishes events as persistent JSON messages on a durable queue. The
// connection is opened lazily and reopened after a failure.
type AMQPSink struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPSink(cfg config.BrokerConfig) *AMQPSink {
	return &AMQPSink{url: cfg.URL, queue: cfg.Queue}
}

func (s *AMQPSink) Name() string {
	return "amqp"
}

func (s *AMQPSink) Handle(ctx context.Context, ev events.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errs.Wrap(err, "marshal event")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID.String(),
		Type:         ev.Type.String(),
		Timestamp:    ev.OccurredAt.UTC(),
		Body:         body,
	})
	if err != nil {
		s.reset()
		return errs.Wrap(err, "publish event")
	}
	return nil
}

// channel must be called with mu held.
func (s *AMQPSink) channel() (*amqp.Channel, error) {
	if s.ch != nil && !s.ch.IsClosed() {
		return s.ch, nil
	}
	s.reset()

	conn, err := amqp.Dial(s.url)
	if err != nil {
		return nil, errs.Wrap(err, "dial broker")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(err, "open channel")
	}
	if err := declareQueue(ch, s.queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	s.conn, s.ch = conn, ch
	return ch, nil
}

func (s *AMQPSink) reset() {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.conn, s.ch = nil, nil
}

func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return errs.Wrapf(err, "declare queue %s", name)
	}
	return nil
}
