//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/pkg/clock"
	"canyon-booking/internal/pkg/ptr"
	"canyon-booking/internal/usecase/queries"
	"canyon-booking/tests/common/builder"
	"canyon-booking/tests/common/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionQueries(store queries.SessionReadStore) queries.SessionQueries {
	return queries.NewSessionQueries(store, clock.NewMockClock(now), time.UTC)
}

func viewIDs(views []queries.SessionView) []uuid.UUID {
	out := make([]uuid.UUID, len(views))
	for i, v := range views {
		out[i] = v.ID
	}
	return out
}

func TestSessionList(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	p := seedProduct(store, builder.NewProductBuilder())
	guide := uuid.New()

	// Inserted out of order on purpose.
	late := seedSession(store, builder.NewSessionBuilder().WithDate(day(3)).WithStartTime("14:00").WithProducts(p).WithGuide(guide))
	early := seedSession(store, builder.NewSessionBuilder().WithDate(day(3)).WithStartTime("09:00").WithProducts(p))
	first := seedSession(store, builder.NewSessionBuilder().WithDate(day(1)).WithProducts(p).WithGuide(guide))
	last := seedSession(store, builder.NewSessionBuilder().WithDate(day(9)).WithProducts(p))
	fill(store, first, p, 3, now)

	q := newSessionQueries(store)

	t.Run("walks every page in schedule order", func(t *testing.T) {
		var (
			seen   []uuid.UUID
			cursor string
			pages  int
		)
		for {
			page, err := q.List(ctx, queries.SessionListParams{After: cursor, Limit: 3})
			require.NoError(t, err)
			seen = append(seen, viewIDs(page.Items)...)
			pages++
			if page.NextCursor == nil {
				break
			}
			cursor = *page.NextCursor
		}
		assert.Equal(t, 2, pages)
		assert.Equal(t, []uuid.UUID{first.ID(), early.ID(), late.ID(), last.ID()}, seen)
	})

	t.Run("an exact page has no next cursor", func(t *testing.T) {
		page, err := q.List(ctx, queries.SessionListParams{Limit: 4})
		require.NoError(t, err)
		assert.Len(t, page.Items, 4)
		assert.Nil(t, page.NextCursor)
	})

	t.Run("filters", func(t *testing.T) {
		page, err := q.List(ctx, queries.SessionListParams{GuideID: &guide})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{first.ID(), late.ID()}, viewIDs(page.Items))

		from, to := date(2), date(5)
		page, err = q.List(ctx, queries.SessionListParams{From: &from, To: &to})
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{early.ID(), late.ID()}, viewIDs(page.Items))
	})

	t.Run("views carry occupancy", func(t *testing.T) {
		page, err := q.List(ctx, queries.SessionListParams{Limit: 1})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		v := page.Items[0]
		assert.Equal(t, 3, v.BookedPeople)
		require.Len(t, v.Products, 1)
		assert.Equal(t, 3, v.Products[0].Occupied)
		assert.Equal(t, 5, v.Products[0].Available)
	})

	t.Run("rejects a forged cursor", func(t *testing.T) {
		_, err := q.List(ctx, queries.SessionListParams{After: "bm90LWEtY3Vyc29y"})
		assert.ErrorIs(t, err, queries.ErrInvalidCursor)
	})
}

func TestSessionGet(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	a := seedProduct(store, builder.NewProductBuilder().WithName("Furon").WithPrice(5000).WithMaxCapacity(8))
	b := seedProduct(store, builder.NewProductBuilder().WithName("Ecouges"))
	s := seedSession(store, builder.NewSessionBuilder().
		WithDate(day(4)).
		WithProducts(a, b).
		WithOverride(0, &product.Overrides{PriceIndividual: ptr.To(int64(4500)), MaxCapacity: ptr.To(6)}).
		AsMagicRotation())

	firstID := fill(store, s, a, 2, now)
	store.PutBooking(builder.NewBookingBuilder().
		WithSession(s.ID()).WithProduct(b).WithPeople(4).WithCreatedAt(now.Add(-time.Hour)).AsCancelled().
		BuildStored())
	fill(store, s, a, 1, now.Add(time.Minute))

	got, err := newSessionQueries(store).Get(ctx, s.ID())
	require.NoError(t, err)

	require.NotNil(t, got.LockedProductID)
	assert.Equal(t, a, *got.LockedProductID)
	assert.Equal(t, 3, got.BookedPeople)

	require.Len(t, got.Products, 2)
	furon, ecouges := got.Products[0], got.Products[1]
	assert.True(t, furon.HasOverrides)
	assert.Equal(t, int64(4500), furon.PriceIndividual)
	assert.Equal(t, 6, furon.MaxCapacity)
	assert.Equal(t, 3, furon.Available)
	assert.True(t, furon.IsLocked)
	assert.Nil(t, furon.BlockedReason)

	assert.False(t, ecouges.HasOverrides)
	assert.Zero(t, ecouges.Available)
	require.NotNil(t, ecouges.BlockedReason)
	assert.Equal(t, "guide_occupied", *ecouges.BlockedReason)

	require.Len(t, got.Bookings, 3, "cancelled bookings are listed too")
	assert.Equal(t, booking.StatusCancelled.String(), got.Bookings[0].Status)
	assert.Equal(t, firstID, got.Bookings[1].ID)

	_, err = newSessionQueries(store).Get(ctx, uuid.New())
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestSessionGetRejectsBrokenLock(t *testing.T) {
	store := memstore.New()
	a := seedProduct(store, builder.NewProductBuilder())
	b := seedProduct(store, builder.NewProductBuilder())
	c := seedProduct(store, builder.NewProductBuilder())
	s := seedSession(store, builder.NewSessionBuilder().WithProducts(a, b).AsMagicRotation())
	fill(store, s, c, 1, now)

	_, err := newSessionQueries(store).Get(context.Background(), s.ID())
	assert.Error(t, err)
}

func TestSessionListSkipsBrokenLock(t *testing.T) {
	store := memstore.New()
	a := seedProduct(store, builder.NewProductBuilder())
	b := seedProduct(store, builder.NewProductBuilder())
	stray := seedProduct(store, builder.NewProductBuilder())
	healthy := seedSession(store, builder.NewSessionBuilder().WithDate(day(2)).WithProducts(a))
	broken := seedSession(store, builder.NewSessionBuilder().WithDate(day(3)).WithProducts(a, b).AsMagicRotation())
	fill(store, broken, stray, 1, now)
	later := seedSession(store, builder.NewSessionBuilder().WithDate(day(4)).WithProducts(b))

	page, err := newSessionQueries(store).List(context.Background(), queries.SessionListParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{healthy.ID()}, viewIDs(page.Items))
	require.NotNil(t, page.NextCursor, "paging still advances past the skipped session")

	page, err = newSessionQueries(store).List(context.Background(), queries.SessionListParams{After: *page.NextCursor, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{later.ID()}, viewIDs(page.Items))
}

func TestSessionAlternatives(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	p := seedProduct(store, builder.NewProductBuilder().WithMaxCapacity(8))
	guide := uuid.New()

	source := seedSession(store, builder.NewSessionBuilder().WithDate(day(2)).WithProducts(p).WithGuide(guide))
	fill(store, source, p, 3, now)
	fill(store, source, p, 2, now.Add(time.Minute))

	roomy := seedSession(store, builder.NewSessionBuilder().WithDate(day(5)).WithProducts(p).WithGuide(guide))
	tight := seedSession(store, builder.NewSessionBuilder().WithDate(day(6)).WithProducts(p).WithGuide(guide))
	fill(store, tight, p, 4, now)
	exact := seedSession(store, builder.NewSessionBuilder().WithDate(day(7)).WithProducts(p).WithGuide(guide))
	fill(store, exact, p, 3, now)
	seedSession(store, builder.NewSessionBuilder().WithDate(day(5)).WithProducts(p))
	seedSession(store, builder.NewSessionBuilder().WithDate(day(8)).WithProducts(p).WithGuide(guide).WithStatus(session.StatusClosed))
	seedSession(store, builder.NewSessionBuilder().WithDate(day(-1)).WithProducts(p).WithGuide(guide))

	got, err := newSessionQueries(store).Alternatives(ctx, source.ID())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{roomy.ID(), exact.ID()}, viewIDs(got))

	_, err = newSessionQueries(store).Alternatives(ctx, uuid.New())
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}
