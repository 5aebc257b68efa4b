//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/usecase/events"
	"canyon-booking/tests/common/builder"
	"canyon-booking/tests/common/memstore"

	"github.com/google/uuid"
)

var baseTime = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evs ...events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evs...)
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type outcome struct {
	op, result string
}

type recordingRecorder struct {
	mu       sync.Mutex
	outcomes []outcome
}

func (r *recordingRecorder) RecordAllocation(op, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome{op, result})
}

func (r *recordingRecorder) last() outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outcomes) == 0 {
		return outcome{}
	}
	return r.outcomes[len(r.outcomes)-1]
}

// seedProducts stores one product per builder and returns their ids in order.
func seedProducts(store *memstore.Store, bs ...*builder.ProductBuilder) []uuid.UUID {
	ids := make([]uuid.UUID, len(bs))
	for i, b := range bs {
		p := b.BuildStored()
		store.PutProduct(p)
		ids[i] = p.ID()
	}
	return ids
}

func seedSession(store *memstore.Store, b *builder.SessionBuilder) *session.Session {
	s := b.BuildStored()
	store.PutSession(s)
	return s
}

func seedBooking(store *memstore.Store, b *builder.BookingBuilder) *booking.Booking {
	bk := b.BuildStored()
	store.PutBooking(bk)
	return bk
}

func product8(name string, priceCents int64) *builder.ProductBuilder {
	return builder.NewProductBuilder().WithName(name).WithPrice(priceCents).WithMaxCapacity(8)
}

func overrideCapacity(n int) *product.Overrides {
	return &product.Overrides{MaxCapacity: &n}
}
