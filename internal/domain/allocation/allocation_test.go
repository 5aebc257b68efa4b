//go:build unit

package allocation_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"canyon-booking/internal/domain/allocation"
	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/pkg/errs"
	"canyon-booking/internal/pkg/ptr"
	"canyon-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

func occupant(productID uuid.UUID, people int, minute int) allocation.Occupant {
	return allocation.Occupant{
		BookingID: uuid.New(),
		ProductID: productID,
		People:    people,
		Status:    booking.StatusPending,
		CreatedAt: t0.Add(time.Duration(minute) * time.Minute),
	}
}

func cancelled(o allocation.Occupant) allocation.Occupant {
	o.Status = booking.StatusCancelled
	return o
}

func slotOf(rotation bool, products ...product.Effective) allocation.Slot {
	return allocation.Slot{
		SessionID:       uuid.New(),
		IsMagicRotation: rotation,
		Open:            true,
		Products:        products,
	}
}

func TestAvailableCapacity(t *testing.T) {
	a := builder.NewProductBuilder().WithMaxCapacity(8).BuildEffective()
	b := builder.NewProductBuilder().WithMaxCapacity(4).BuildEffective()

	s := slotOf(false, a, b)
	s.Occupants = []allocation.Occupant{
		occupant(a.ID, 3, 0),
		cancelled(occupant(a.ID, 4, 1)),
		occupant(b.ID, 4, 2),
		occupant(b.ID, 2, 3),
	}

	assert.Equal(t, 5, allocation.AvailableCapacity(s, a.ID), "cancelled bookings free their seats")
	assert.Equal(t, 0, allocation.AvailableCapacity(s, b.ID), "never negative")
	assert.Equal(t, 0, allocation.AvailableCapacity(s, uuid.New()), "unknown product")
	assert.Equal(t, 8, allocation.AvailableCapacityExcluding(s, a.ID, s.Occupants[0].BookingID))
	assert.Equal(t, 9, s.Headcount())
}

func TestResolveLock(t *testing.T) {
	a := builder.NewProductBuilder().BuildEffective()
	b := builder.NewProductBuilder().BuildEffective()

	t.Run("no rotation means no lock", func(t *testing.T) {
		s := slotOf(false, a, b)
		s.Occupants = []allocation.Occupant{occupant(b.ID, 1, 0)}
		_, ok := allocation.ResolveLock(s)
		assert.False(t, ok)
	})

	t.Run("empty rotation slot is unlocked", func(t *testing.T) {
		_, ok := allocation.ResolveLock(slotOf(true, a, b))
		assert.False(t, ok)
	})

	t.Run("earliest active booking wins", func(t *testing.T) {
		s := slotOf(true, a, b)
		s.Occupants = []allocation.Occupant{
			occupant(a.ID, 2, 5),
			cancelled(occupant(a.ID, 2, -10)),
			occupant(b.ID, 1, 1),
		}
		locked, ok := allocation.ResolveLock(s)
		require.True(t, ok)
		assert.Equal(t, b.ID, locked)
	})

	t.Run("only cancelled bookings release the lock", func(t *testing.T) {
		s := slotOf(true, a, b)
		s.Occupants = []allocation.Occupant{cancelled(occupant(a.ID, 2, 0))}
		_, ok := allocation.ResolveLock(s)
		assert.False(t, ok)
	})

	t.Run("same creation time breaks ties by booking id", func(t *testing.T) {
		s := slotOf(true, a, b)
		first := occupant(a.ID, 1, 0)
		second := occupant(b.ID, 1, 0)
		first.BookingID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
		second.BookingID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
		s.Occupants = []allocation.Occupant{second, first}

		locked, ok := allocation.ResolveLock(s)
		require.True(t, ok)
		assert.Equal(t, a.ID, locked)
	})
}

// Session S (maxCapacity 8, magic rotation, Canyon A and Canyon B).
func TestAdmit_RotationScenario(t *testing.T) {
	canyonA := builder.NewProductBuilder().WithName("Canyon A").WithMaxCapacity(8).BuildEffective()
	canyonB := builder.NewProductBuilder().WithName("Canyon B").WithMaxCapacity(8).BuildEffective()
	s := slotOf(true, canyonA, canyonB)

	book := func(productID uuid.UUID, people int) error {
		if _, err := allocation.Admit(s, productID, people); err != nil {
			return err
		}
		s.Occupants = append(s.Occupants, occupant(productID, people, len(s.Occupants)))
		return nil
	}

	require.NoError(t, book(canyonA.ID, 3), "first booking locks A")

	err := book(canyonB.ID, 2)
	assert.ErrorIs(t, err, allocation.ErrGuideOccupied)

	err = book(canyonA.ID, 6)
	assert.ErrorIs(t, err, allocation.ErrCapacityExceeded, "3+6 overflows 8")

	require.NoError(t, book(canyonA.ID, 4))
	assert.Equal(t, 7, allocation.Occupancy(s, canyonA.ID, uuid.Nil))
	assert.Equal(t, 1, allocation.AvailableCapacity(s, canyonA.ID))
}

func TestAdmit(t *testing.T) {
	a := builder.NewProductBuilder().WithMaxCapacity(4).BuildEffective()
	b := builder.NewProductBuilder().WithMaxCapacity(4).BuildEffective()

	t.Run("product not offered", func(t *testing.T) {
		_, err := allocation.Admit(slotOf(false, a), b.ID, 1)
		assert.ErrorIs(t, err, product.ErrProductMissingLink)
	})

	t.Run("closed session", func(t *testing.T) {
		s := slotOf(false, a)
		s.Open = false
		_, err := allocation.Admit(s, a.ID, 1)
		assert.ErrorIs(t, err, allocation.ErrSessionClosed)
	})

	t.Run("non rotation slots mix products", func(t *testing.T) {
		s := slotOf(false, a, b)
		s.Occupants = []allocation.Occupant{occupant(a.ID, 4, 0)}
		got, err := allocation.Admit(s, b.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	})

	t.Run("lock on a product no longer offered", func(t *testing.T) {
		s := slotOf(true, a, b)
		s.Occupants = []allocation.Occupant{occupant(uuid.New(), 1, 0)}
		_, err := allocation.Admit(s, a.ID, 1)
		assert.ErrorIs(t, err, allocation.ErrLockIntegrity)
	})

	t.Run("moving booking does not count against itself", func(t *testing.T) {
		s := slotOf(false, a)
		self := occupant(a.ID, 4, 0)
		s.Occupants = []allocation.Occupant{self}

		_, err := allocation.Admit(s, a.ID, 4)
		assert.ErrorIs(t, err, allocation.ErrCapacityExceeded)

		_, err = allocation.AdmitMove(s, a.ID, 4, self.BookingID)
		assert.NoError(t, err)
	})

	t.Run("overrides drive capacity", func(t *testing.T) {
		merged := product.MergeOverrides(a, &product.Overrides{MaxCapacity: ptr.To(2)})
		_, err := allocation.Admit(slotOf(false, merged), a.ID, 3)
		assert.ErrorIs(t, err, allocation.ErrCapacityExceeded)
	})
}

func TestEvaluate(t *testing.T) {
	a := builder.NewProductBuilder().WithMaxCapacity(8).BuildEffective()
	b := builder.NewProductBuilder().WithMaxCapacity(6).BuildEffective()

	s := slotOf(true, a, b)
	s.Occupants = []allocation.Occupant{occupant(b.ID, 2, 0)}

	got, err := allocation.Evaluate(s)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 0, got[0].Available)
	require.NotNil(t, got[0].Blocked)
	assert.Equal(t, allocation.ReasonGuideOccupied, got[0].Blocked.Reason)
	assert.Equal(t, "guide occupied with another activity", got[0].Blocked.Error())

	assert.Nil(t, got[1].Blocked)
	assert.True(t, got[1].Locked)
	assert.Equal(t, 4, got[1].Available)
	assert.Equal(t, 2, got[1].Occupied)

	hosts, err := allocation.Hosts(s, 4)
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, b.ID, hosts[0].ID)

	hosts, err = allocation.Hosts(s, 5)
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func TestResolveMoveTarget(t *testing.T) {
	p1 := builder.NewProductBuilder().BuildEffective()
	p2 := builder.NewProductBuilder().BuildEffective()
	moving := uuid.New()

	t.Run("dominant product wins over caller choice", func(t *testing.T) {
		s := slotOf(false, p1, p2)
		s.Occupants = []allocation.Occupant{occupant(p2.ID, 1, 0), occupant(p2.ID, 1, 1), occupant(p1.ID, 5, 2)}

		got, err := allocation.ResolveMoveTarget(s, moving, &p1.ID)
		require.NoError(t, err)
		assert.Equal(t, p2.ID, got.ProductID)
		assert.False(t, got.NeedsSelection)
	})

	t.Run("dominant tie goes to the earliest booking", func(t *testing.T) {
		s := slotOf(false, p1, p2)
		s.Occupants = []allocation.Occupant{occupant(p1.ID, 1, 10), occupant(p2.ID, 1, 3)}

		got, err := allocation.ResolveMoveTarget(s, moving, nil)
		require.NoError(t, err)
		assert.Equal(t, p2.ID, got.ProductID)
	})

	t.Run("the moving booking itself is ignored", func(t *testing.T) {
		s := slotOf(false, p1, p2)
		self := occupant(p1.ID, 2, 0)
		s.Occupants = []allocation.Occupant{self}

		got, err := allocation.ResolveMoveTarget(s, self.BookingID, &p2.ID)
		require.NoError(t, err)
		assert.Equal(t, p2.ID, got.ProductID)
	})

	t.Run("caller choice must be offered", func(t *testing.T) {
		other := uuid.New()
		_, err := allocation.ResolveMoveTarget(slotOf(false, p1, p2), moving, &other)
		assert.ErrorIs(t, err, product.ErrProductMissingLink)
	})

	t.Run("single product is picked automatically", func(t *testing.T) {
		got, err := allocation.ResolveMoveTarget(slotOf(false, p1), moving, nil)
		require.NoError(t, err)
		assert.Equal(t, p1.ID, got.ProductID)
	})

	t.Run("ambiguous empty slot needs a selection", func(t *testing.T) {
		got, err := allocation.ResolveMoveTarget(slotOf(true, p1, p2), moving, nil)
		require.NoError(t, err)
		assert.True(t, got.NeedsSelection)
		assert.Equal(t, uuid.Nil, got.ProductID)
		assert.Len(t, got.Candidates, 2)
	})

	t.Run("dominant product missing from links", func(t *testing.T) {
		s := slotOf(false, p1)
		s.Occupants = []allocation.Occupant{occupant(p2.ID, 1, 0)}
		_, err := allocation.ResolveMoveTarget(s, moving, nil)
		assert.ErrorIs(t, err, allocation.ErrLockIntegrity)
	})
}

// Random create/cancel/move sequences across two rotation slots never push any
// (slot, product) pair over its capacity and never mix products in a locked slot.
func TestCapacityInvariant_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	for round := range 200 {
		a := builder.NewProductBuilder().WithMaxCapacity(1 + rng.IntN(8)).BuildEffective()
		b := builder.NewProductBuilder().WithMaxCapacity(1 + rng.IntN(8)).BuildEffective()
		slots := []*allocation.Slot{
			ptr.To(slotOf(true, a, b)),
			ptr.To(slotOf(rng.IntN(2) == 0, a, b)),
		}
		clock := 0

		for range 40 {
			s := slots[rng.IntN(len(slots))]
			switch rng.IntN(3) {
			case 0:
				pid := s.Products[rng.IntN(2)].ID
				people := 1 + rng.IntN(4)
				if _, err := allocation.Admit(*s, pid, people); err == nil {
					clock++
					s.Occupants = append(s.Occupants, occupant(pid, people, clock))
				}
			case 1:
				if len(s.Occupants) > 0 {
					i := rng.IntN(len(s.Occupants))
					s.Occupants[i] = cancelled(s.Occupants[i])
				}
			case 2:
				if len(s.Occupants) == 0 {
					continue
				}
				i := rng.IntN(len(s.Occupants))
				o := s.Occupants[i]
				if !o.Active() {
					continue
				}
				dst := slots[rng.IntN(len(slots))]
				choice := dst.Products[rng.IntN(2)].ID
				target, err := allocation.ResolveMoveTarget(*dst, o.BookingID, &choice)
				if err != nil || target.NeedsSelection {
					continue
				}
				if _, err := allocation.AdmitMove(*dst, target.ProductID, o.People, o.BookingID); err != nil {
					continue
				}
				s.Occupants = append(s.Occupants[:i:i], s.Occupants[i+1:]...)
				o.ProductID = target.ProductID
				dst.Occupants = append(dst.Occupants, o)
			}

			for _, chk := range slots {
				for _, p := range chk.Products {
					occ := allocation.Occupancy(*chk, p.ID, uuid.Nil)
					require.LessOrEqual(t, occ, p.MaxCapacity, "round %d: capacity exceeded", round)
				}
				if locked, ok := allocation.ResolveLock(*chk); ok {
					for _, o := range chk.Occupants {
						if o.Active() {
							require.Equal(t, locked, o.ProductID, "round %d: rotation slot mixes products", round)
						}
					}
				}
			}
		}
	}
}

func TestNewSlot(t *testing.T) {
	a := builder.NewProductBuilder().WithMaxCapacity(8).BuildStored()
	b := builder.NewProductBuilder().WithMaxCapacity(8).BuildStored()
	s := builder.NewSessionBuilder().
		WithProducts(a.ID(), b.ID()).
		WithOverride(1, &product.Overrides{MaxCapacity: ptr.To(4)}).
		AsMagicRotation().
		BuildStored()
	bk := builder.NewBookingBuilder().WithSession(s.ID()).WithProduct(b.ID()).WithPeople(3).BuildStored()

	slot, err := allocation.NewSlot(s, []*product.Product{b, a}, []*booking.Booking{bk})
	require.NoError(t, err)

	require.Len(t, slot.Products, 2)
	assert.Equal(t, a.ID(), slot.Products[0].ID, "link order is kept")
	assert.Equal(t, 4, slot.Products[1].MaxCapacity, "override applied")
	assert.Equal(t, 8, b.MaxCapacity(), "canonical product untouched")
	assert.True(t, slot.Open)
	assert.Equal(t, 1, allocation.AvailableCapacity(slot, b.ID()))

	_, err = allocation.NewSlot(s, []*product.Product{a}, nil)
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestValidate(t *testing.T) {
	a := builder.NewProductBuilder().WithMaxCapacity(6).BuildEffective()
	b := builder.NewProductBuilder().WithMaxCapacity(6).BuildEffective()

	tests := []struct {
		name      string
		slot      func() allocation.Slot
		wantErrIs error
	}{
		{
			name: "consistent slot",
			slot: func() allocation.Slot {
				s := slotOf(true, a, b)
				s.Occupants = []allocation.Occupant{occupant(a.ID, 4, 0), cancelled(occupant(b.ID, 2, 1))}
				return s
			},
		},
		{
			name: "booked product removed",
			slot: func() allocation.Slot {
				s := slotOf(false, a)
				s.Occupants = []allocation.Occupant{occupant(b.ID, 1, 0)}
				return s
			},
			wantErrIs: allocation.ErrProductInUse,
		},
		{
			name: "rotation enabled over mixed bookings",
			slot: func() allocation.Slot {
				s := slotOf(true, a, b)
				s.Occupants = []allocation.Occupant{occupant(a.ID, 1, 0), occupant(b.ID, 1, 1)}
				return s
			},
			wantErrIs: allocation.ErrGuideOccupied,
		},
		{
			name: "capacity lowered below occupancy",
			slot: func() allocation.Slot {
				small := a
				small.MaxCapacity = 2
				s := slotOf(false, small)
				s.Occupants = []allocation.Occupant{occupant(a.ID, 3, 0)}
				return s
			},
			wantErrIs: allocation.ErrCapacityExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := allocation.Validate(tt.slot())
			if tt.wantErrIs == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErrIs)
		})
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", allocation.Outcome(nil))
	assert.Equal(t, "capacity_exceeded", allocation.Outcome(errs.Wrap(allocation.ErrCapacityExceeded, "create")))
	assert.Equal(t, "error", allocation.Outcome(errs.New("boom")))
}
