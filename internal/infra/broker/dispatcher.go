// Package broker carries committed domain events out of the request path.
package broker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"canyon-booking/internal/usecase/events"
)

// Sink receives every dispatched event. A failing sink is logged and skipped.
type Sink interface {
	Name() string
	Handle(ctx context.Context, ev events.Event) error
}

const sinkTimeout = 5 * time.Second

// Dispatcher is an in-process buffered fan-out. Publish never blocks: when the
// buffer is full the event is dropped with a warning.
type Dispatcher struct {
	queue  chan events.Event
	sinks  []Sink
	logger *slog.Logger
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(bufferSize int, logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Dispatcher{
		queue:  make(chan events.Event, bufferSize),
		sinks:  sinks,
		logger: logger,
	}
}

func (d *Dispatcher) Publish(ctx context.Context, evs ...events.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	for _, ev := range evs {
		select {
		case d.queue <- ev:
		default:
			d.logger.WarnContext(ctx, "event buffer full, dropping event",
				"event_id", ev.ID, "type", ev.Type.String(), "session_id", ev.SessionID)
		}
	}
}

// Start runs the delivery loop until Stop.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for ev := range d.queue {
			d.deliver(ev)
		}
	}()
}

// Stop refuses new events and waits for the buffered ones to be delivered.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(ev events.Event) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		if err := s.Handle(ctx, ev); err != nil {
			d.logger.Error("event delivery failed",
				"sink", s.Name(), "event_id", ev.ID, "type", ev.Type.String(), "error", err.Error())
		}
		cancel()
	}
}
