//go:build unit

package queries_test

import (
	"context"
	"sync/atomic"
	"time"

	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/usecase/queries"
	"canyon-booking/tests/common/builder"
	"canyon-booking/tests/common/memstore"

	"github.com/google/uuid"
)

// now is 2026-07-01 08:00 UTC; sessions dated from 2026-07-02 on are upcoming.
var now = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

func day(offset int) string {
	return now.AddDate(0, 0, offset).Format(session.DateFormat)
}

func date(offset int) time.Time {
	d, _ := session.ParseDate(day(offset))
	return d
}

// countingStore counts List round trips to the underlying read store.
type countingStore struct {
	queries.SessionReadStore
	lists atomic.Int32
}

func (c *countingStore) List(ctx context.Context, f queries.SessionFilter) ([]queries.SessionRecord, error) {
	c.lists.Add(1)
	return c.SessionReadStore.List(ctx, f)
}

func seedProduct(store *memstore.Store, b *builder.ProductBuilder) uuid.UUID {
	p := b.BuildStored()
	store.PutProduct(p)
	return p.ID()
}

func seedSession(store *memstore.Store, b *builder.SessionBuilder) *session.Session {
	s := b.BuildStored()
	store.PutSession(s)
	return s
}

// fill books people seats of productID in s.
func fill(store *memstore.Store, s *session.Session, productID uuid.UUID, people int, createdAt time.Time) uuid.UUID {
	b := builder.NewBookingBuilder().
		WithSession(s.ID()).
		WithProduct(productID).
		WithPeople(people).
		WithCreatedAt(createdAt).
		BuildStored()
	store.PutBooking(b)
	return b.ID()
}
