//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/money"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/pkg/clock"
	"canyon-booking/internal/pkg/ptr"
	"canyon-booking/internal/usecase/commands"
	"canyon-booking/internal/usecase/events"
	"canyon-booking/internal/usecase/queries"
	"canyon-booking/tests/common/builder"
	"canyon-booking/tests/common/memstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingGet(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	clk := clock.NewMockClock(now)
	p := seedProduct(store, builder.NewProductBuilder().WithName("Furon").WithPrice(5000))
	s := seedSession(store, builder.NewSessionBuilder().
		WithDate(day(3)).
		WithProducts(p).
		WithOverride(0, &product.Overrides{Name: ptr.To("Furon (short)")}))

	cmds := commands.NewBookingUseCase(store, clk, events.NopPublisher{}, commands.NopRecorder{})
	created, err := cmds.Create(ctx, commands.CreateBookingInput{
		SessionID:      s.ID(),
		ProductID:      p,
		Client:         builder.NewBookingBuilder().Client(),
		NumberOfPeople: 2,
		InitialAmount:  money.MustFromCents(3000),
		PaymentMethod:  "card",
	})
	require.NoError(t, err)
	clk.Add(time.Hour)
	_, err = cmds.ReplaceParticipants(ctx, created.ID(), []commands.ParticipantInput{
		{Name: "Lea", Age: ptr.To(30), HeightCm: ptr.To(170), WeightKg: ptr.To(60)},
		{Name: "Tom"},
	})
	require.NoError(t, err)

	q := queries.NewBookingQueries(store.Bookings(), clk, time.UTC)
	got, err := q.Get(ctx, created.ID())
	require.NoError(t, err)

	assert.Equal(t, created.ID(), got.ID)
	assert.Equal(t, int64(10000), got.TotalPrice)
	assert.Equal(t, int64(3000), got.AmountPaid)
	assert.Equal(t, booking.StatusPending.String(), got.Status)
	assert.Equal(t, s.ID(), got.Session.ID)
	assert.Equal(t, 2, got.Session.BookedPeople)
	assert.Equal(t, "Furon (short)", got.Product.Name, "the product is shown as the session presents it")
	assert.True(t, got.Product.HasOverrides)

	require.Len(t, got.Payments, 1)
	assert.Equal(t, int64(3000), got.Payments[0].Amount)
	assert.Equal(t, []string{"created", "payment", "participants"}, actions(got.History))
	require.Len(t, got.Participants, 2)
	assert.True(t, got.Participants[0].IsComplete)
	assert.False(t, got.Participants[1].IsComplete)
	assert.False(t, got.ParticipantsFormCompleted)

	_, err = q.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
}

func TestBookingGetAfterProductUnlinked(t *testing.T) {
	store := memstore.New()
	a := seedProduct(store, builder.NewProductBuilder())
	b := seedProduct(store, builder.NewProductBuilder())
	s := seedSession(store, builder.NewSessionBuilder().WithProducts(a))
	cancelled := builder.NewBookingBuilder().WithSession(s.ID()).WithProduct(b).AsCancelled().BuildStored()
	store.PutBooking(cancelled)

	got, err := queries.NewBookingQueries(store.Bookings(), clock.NewMockClock(now), time.UTC).Get(context.Background(), cancelled.ID())
	require.NoError(t, err)
	assert.Equal(t, b, got.Product.ID)
	assert.Empty(t, got.Product.Name)
}

func actions(hs []queries.HistoryView) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.Action
	}
	return out
}

func TestProductList(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	owner := uuid.New()
	seedProduct(store, builder.NewProductBuilder().WithName("Zinal").WithOwner(owner))
	seedProduct(store, builder.NewProductBuilder().WithName("Aigue").WithOwner(owner))
	seedProduct(store, builder.NewProductBuilder().WithName("Furon"))

	q := queries.NewProductQueries(store.Products())

	all, err := q.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := q.List(ctx, &owner)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Aigue", mine[0].Name)
	assert.Equal(t, "Zinal", mine[1].Name)
	assert.Equal(t, owner, mine[1].OwnerID)
}
