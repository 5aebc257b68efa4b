//go:build unit || e2e

// Package memstore is an in-memory unit of work and read store for usecase
// tests. Transactions are serialized and roll back by restoring a snapshot.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"canyon-booking/internal/domain/booking"
	"canyon-booking/internal/domain/product"
	"canyon-booking/internal/domain/session"
	"canyon-booking/internal/infra/db"
	"canyon-booking/internal/usecase/queries"
	"canyon-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type state struct {
	products     map[uuid.UUID]*product.Product
	sessions     map[uuid.UUID]*session.Session
	bookings     map[uuid.UUID]*booking.Booking
	payments     []booking.Payment
	history      []booking.HistoryEntry
	participants map[uuid.UUID][]booking.Participant
	webhooks     map[string]time.Time
}

func newState() state {
	return state{
		products:     map[uuid.UUID]*product.Product{},
		sessions:     map[uuid.UUID]*session.Session{},
		bookings:     map[uuid.UUID]*booking.Booking{},
		participants: map[uuid.UUID][]booking.Participant{},
		webhooks:     map[string]time.Time{},
	}
}

func (s state) clone() state {
	c := newState()
	for id, p := range s.products {
		c.products[id] = cloneProduct(p)
	}
	for id, ss := range s.sessions {
		c.sessions[id] = cloneSession(ss)
	}
	for id, b := range s.bookings {
		c.bookings[id] = cloneBooking(b)
	}
	c.payments = slices.Clone(s.payments)
	c.history = slices.Clone(s.history)
	for id, ps := range s.participants {
		c.participants[id] = slices.Clone(ps)
	}
	for k, v := range s.webhooks {
		c.webhooks[k] = v
	}
	return c
}

func cloneProduct(p *product.Product) *product.Product {
	return product.Reconstruct(p.ID(), p.OwnerID(), p.Attributes(), p.CreatedAt(), p.UpdatedAt())
}

func cloneSession(s *session.Session) *session.Session {
	return session.Reconstruct(s.ID(), session.Params{
		GuideID:         s.GuideID(),
		TeamName:        s.TeamName(),
		Date:            s.Date(),
		TimeSlot:        s.TimeSlot(),
		StartTime:       s.StartTime(),
		IsMagicRotation: s.IsMagicRotation(),
		ShoeRental:      s.ShoeRental(),
		Links:           slices.Clone(s.Links()),
	}, s.Status(), s.CreatedAt(), s.UpdatedAt())
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	return booking.Reconstruct(b.Snapshot())
}

// Store implements shared.UnitOfWork and the query read stores over one
// in-memory state.
type Store struct {
	mu    sync.Mutex
	state state

	// FailNext makes the next transaction fail with this error before fn runs.
	FailNext error
}

func New() *Store {
	return &Store{state: newState()}
}

var _ shared.UnitOfWork = (*Store)(nil)

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailNext; err != nil {
		s.FailNext = nil
		return err
	}
	snapshot := s.state.clone()
	if err := fn(ctx, &memTx{st: &s.state}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// Seeding helpers write directly, outside any transaction.

func (s *Store) PutProduct(p *product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[p.ID()] = cloneProduct(p)
}

func (s *Store) PutSession(ss *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.sessions[ss.ID()] = cloneSession(ss)
}

func (s *Store) PutBooking(b *booking.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.bookings[b.ID()] = cloneBooking(b)
}

// Inspection helpers.

func (s *Store) Booking(id uuid.UUID) (*booking.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.state.bookings[id]
	if !ok {
		return nil, false
	}
	return cloneBooking(b), true
}

func (s *Store) Session(id uuid.UUID) (*session.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.state.sessions[id]
	if !ok {
		return nil, false
	}
	return cloneSession(ss), true
}

func (s *Store) Product(id uuid.UUID) (*product.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.products[id]
	if !ok {
		return nil, false
	}
	return cloneProduct(p), true
}

// BookingsOf lists a session's bookings oldest first, cancelled ones included.
func (s *Store) BookingsOf(sessionID uuid.UUID) []*booking.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.bookingsOf(sessionID)
}

func (s *Store) Payments(bookingID uuid.UUID) []booking.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.state.payments, func(p booking.Payment) bool { return p.BookingID == bookingID })
}

func (s *Store) History(bookingID uuid.UUID) []booking.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.state.history, func(h booking.HistoryEntry) bool { return h.BookingID == bookingID })
}

func (s *Store) Participants(bookingID uuid.UUID) []booking.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.participants[bookingID])
}

func (st *state) bookingsOf(sessionID uuid.UUID) []*booking.Booking {
	var out []*booking.Booking
	for _, b := range st.bookings {
		if b.SessionID() == sessionID {
			out = append(out, cloneBooking(b))
		}
	}
	slices.SortFunc(out, func(a, b *booking.Booking) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}
		return cmp.Compare(a.ID().String(), b.ID().String())
	})
	return out
}

func (st *state) deleteBooking(id uuid.UUID) {
	delete(st.bookings, id)
	delete(st.participants, id)
	st.payments = filter(st.payments, func(p booking.Payment) bool { return p.BookingID != id })
	st.history = filter(st.history, func(h booking.HistoryEntry) bool { return h.BookingID != id })
}

func filter[T any](in []T, keep func(T) bool) []T {
	var out []T
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Transaction view

type memTx struct {
	st *state
}

func (t *memTx) Products() shared.ProductRepository           { return productRepo{t.st} }
func (t *memTx) Sessions() shared.SessionRepository           { return sessionRepo{t.st} }
func (t *memTx) Bookings() shared.BookingRepository           { return bookingRepo{t.st} }
func (t *memTx) WebhookEvents() shared.WebhookEventRepository { return webhookRepo{t.st} }
func (t *memTx) DB() db.DBTX                                  { return nil }

type productRepo struct{ st *state }

func (r productRepo) Create(_ context.Context, _ db.DBTX, p *product.Product) error {
	r.st.products[p.ID()] = cloneProduct(p)
	return nil
}

func (r productRepo) Update(_ context.Context, _ db.DBTX, p *product.Product) error {
	if _, ok := r.st.products[p.ID()]; !ok {
		return product.ErrProductNotFound
	}
	r.st.products[p.ID()] = cloneProduct(p)
	return nil
}

func (r productRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*product.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r productRepo) FindByIDs(_ context.Context, _ db.DBTX, ids []uuid.UUID) ([]*product.Product, error) {
	var out []*product.Product
	for _, id := range ids {
		if p, ok := r.st.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

type sessionRepo struct{ st *state }

func (r sessionRepo) Create(_ context.Context, _ db.DBTX, s *session.Session) error {
	r.st.sessions[s.ID()] = cloneSession(s)
	return nil
}

func (r sessionRepo) Update(_ context.Context, _ db.DBTX, s *session.Session) error {
	if _, ok := r.st.sessions[s.ID()]; !ok {
		return session.ErrSessionNotFound
	}
	r.st.sessions[s.ID()] = cloneSession(s)
	return nil
}

// Delete cascades to the session's bookings like the foreign keys do.
func (r sessionRepo) Delete(_ context.Context, _ db.DBTX, id uuid.UUID) error {
	if _, ok := r.st.sessions[id]; !ok {
		return session.ErrSessionNotFound
	}
	delete(r.st.sessions, id)
	for bid, b := range r.st.bookings {
		if b.SessionID() == id {
			r.st.deleteBooking(bid)
		}
	}
	return nil
}

func (r sessionRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*session.Session, error) {
	s, ok := r.st.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (r sessionRepo) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*session.Session, error) {
	return r.FindByID(ctx, tx, id)
}

func (r sessionRepo) LockByProduct(_ context.Context, _ db.DBTX, productID uuid.UUID) ([]*session.Session, error) {
	var out []*session.Session
	for _, s := range r.st.sessions {
		if slices.Contains(s.ProductIDs(), productID) {
			out = append(out, cloneSession(s))
		}
	}
	slices.SortFunc(out, func(a, b *session.Session) int {
		return cmp.Compare(a.ID().String(), b.ID().String())
	})
	return out, nil
}

type bookingRepo struct{ st *state }

func (r bookingRepo) Create(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	r.st.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r bookingRepo) Update(_ context.Context, _ db.DBTX, b *booking.Booking) error {
	if _, ok := r.st.bookings[b.ID()]; !ok {
		return booking.ErrBookingNotFound
	}
	r.st.bookings[b.ID()] = cloneBooking(b)
	return nil
}

func (r bookingRepo) Delete(_ context.Context, _ db.DBTX, id uuid.UUID) error {
	if _, ok := r.st.bookings[id]; !ok {
		return booking.ErrBookingNotFound
	}
	r.st.deleteBooking(id)
	return nil
}

func (r bookingRepo) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	b, ok := r.st.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r bookingRepo) LockByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*booking.Booking, error) {
	return r.FindByID(ctx, tx, id)
}

func (r bookingRepo) ListBySession(_ context.Context, _ db.DBTX, sessionID uuid.UUID) ([]*booking.Booking, error) {
	return r.st.bookingsOf(sessionID), nil
}

func (r bookingRepo) AddPayment(_ context.Context, _ db.DBTX, p booking.Payment) error {
	r.st.payments = append(r.st.payments, p)
	return nil
}

func (r bookingRepo) AddHistory(_ context.Context, _ db.DBTX, h booking.HistoryEntry) error {
	r.st.history = append(r.st.history, h)
	return nil
}

func (r bookingRepo) ReplaceParticipants(_ context.Context, _ db.DBTX, bookingID uuid.UUID, ps []booking.Participant) error {
	r.st.participants[bookingID] = slices.Clone(ps)
	return nil
}

type webhookRepo struct{ st *state }

func (r webhookRepo) MarkProcessed(_ context.Context, _ db.DBTX, provider, eventID string, at time.Time) (bool, error) {
	key := provider + "/" + eventID
	if _, ok := r.st.webhooks[key]; ok {
		return false, nil
	}
	r.st.webhooks[key] = at
	return true, nil
}

// Read side

var (
	_ queries.SessionReadStore = (*Store)(nil)
	_ queries.BookingReadStore = bookingReader{}
	_ queries.ProductReadStore = productReader{}
)

// Sessions returns the store as a queries.SessionReadStore.
func (s *Store) Sessions() queries.SessionReadStore { return s }

func (s *Store) List(_ context.Context, f queries.SessionFilter) ([]queries.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var picked []*session.Session
	for _, ss := range s.state.sessions {
		if matches(ss, f) {
			picked = append(picked, ss)
		}
	}
	slices.SortFunc(picked, compareSchedule)
	if f.Limit > 0 && len(picked) > f.Limit {
		picked = picked[:f.Limit]
	}

	out := make([]queries.SessionRecord, len(picked))
	for i, ss := range picked {
		out[i] = s.state.record(ss)
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (queries.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.state.sessions[id]
	if !ok {
		return queries.SessionRecord{}, session.ErrSessionNotFound
	}
	return s.state.record(ss), nil
}

// ListProducts serves queries.ProductReadStore through the Products adapter.
func (s *Store) ListProducts(ownerID *uuid.UUID) []*product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*product.Product
	for _, p := range s.state.products {
		if ownerID == nil || p.OwnerID() == *ownerID {
			out = append(out, cloneProduct(p))
		}
	}
	slices.SortFunc(out, func(a, b *product.Product) int { return cmp.Compare(a.Name(), b.Name()) })
	return out
}

func (st *state) record(ss *session.Session) queries.SessionRecord {
	rec := queries.SessionRecord{Session: cloneSession(ss), Bookings: st.bookingsOf(ss.ID())}
	for _, id := range ss.ProductIDs() {
		if p, ok := st.products[id]; ok {
			rec.Products = append(rec.Products, cloneProduct(p))
		}
	}
	return rec
}

func matches(s *session.Session, f queries.SessionFilter) bool {
	switch {
	case f.From != nil && s.Date().Before(*f.From):
		return false
	case f.To != nil && s.Date().After(*f.To):
		return false
	case f.GuideID != nil && s.GuideID() != *f.GuideID:
		return false
	case f.TeamName != nil && (s.TeamName() == nil || *s.TeamName() != *f.TeamName):
		return false
	case f.Status != nil && s.Status() != *f.Status:
		return false
	case f.ProductID != nil && !slices.Contains(s.ProductIDs(), *f.ProductID):
		return false
	case f.After != nil && compareSchedule(s, cursorSession(*f.After)) <= 0:
		return false
	}
	return true
}

func cursorSession(c queries.ScheduleCursor) *session.Session {
	return session.Reconstruct(c.ID, session.Params{Date: c.Date, StartTime: c.StartTime}, session.StatusOpen, time.Time{}, time.Time{})
}

func compareSchedule(a, b *session.Session) int {
	if c := a.Date().Compare(b.Date()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.StartTime().Minutes(), b.StartTime().Minutes()); c != 0 {
		return c
	}
	return cmp.Compare(a.ID().String(), b.ID().String())
}

// Bookings returns a queries.BookingReadStore over the same state.
func (s *Store) Bookings() queries.BookingReadStore { return bookingReader{s} }

// Products returns a queries.ProductReadStore over the same state.
func (s *Store) Products() queries.ProductReadStore { return productReader{s} }

type bookingReader struct{ s *Store }

func (r bookingReader) Get(_ context.Context, id uuid.UUID) (queries.BookingRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := &r.s.state
	b, ok := st.bookings[id]
	if !ok {
		return queries.BookingRecord{}, booking.ErrBookingNotFound
	}
	ss, ok := st.sessions[b.SessionID()]
	if !ok {
		return queries.BookingRecord{}, session.ErrSessionNotFound
	}
	return queries.BookingRecord{
		Booking:      cloneBooking(b),
		Session:      st.record(ss),
		Payments:     filter(st.payments, func(p booking.Payment) bool { return p.BookingID == id }),
		History:      filter(st.history, func(h booking.HistoryEntry) bool { return h.BookingID == id }),
		Participants: slices.Clone(st.participants[id]),
	}, nil
}

type productReader struct{ s *Store }

func (r productReader) List(_ context.Context, ownerID *uuid.UUID) ([]*product.Product, error) {
	return r.s.ListProducts(ownerID), nil
}
