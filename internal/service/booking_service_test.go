package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkshare/internal/booking"
	"parkshare/internal/db"
	"parkshare/internal/entities"
	"parkshare/internal/repository"
)

var testDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

// memStore is an in-memory BookingStore + GarageStore, safe for concurrent
// use so the race scenarios exercise the service's locking for real.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	garages  map[int64]db.Garage
	bookings map[int64]db.Booking
}

func newMemStore(garages ...db.Garage) *memStore {
	s := &memStore{
		garages:  make(map[int64]db.Garage),
		bookings: make(map[int64]db.Booking),
	}
	for _, g := range garages {
		s.garages[g.ID] = g
	}
	return s
}

func (s *memStore) ListBookingsForGarage(_ context.Context, garageID int64) ([]db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Booking
	for _, b := range s.bookings {
		if b.GarageID == garageID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) ListBookingsForUser(_ context.Context, userID int64) ([]db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memStore) ListBookings(_ context.Context, f repository.BookingsFilter) ([]db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Booking
	for _, b := range s.bookings {
		if f.GarageID != 0 && b.GarageID != f.GarageID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *memStore) GetBookingByCode(_ context.Context, code string) (*db.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.Code == code {
			found := b
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: booking %q", booking.ErrNotFound, code)
}

func (s *memStore) InsertBooking(_ context.Context, b *db.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	b.Code = fmt.Sprintf("TEST%04d", s.nextID)
	s.bookings[b.ID] = *b
	return nil
}

func (s *memStore) UpdateBookingStatus(_ context.Context, id int64, status string, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return fmt.Errorf("%w: booking id %d", booking.ErrNotFound, id)
	}
	b.Status = status
	b.UpdatedAt = ts
	if status == db.StatusCancelled {
		b.CancelledAt = &ts
	}
	s.bookings[id] = b
	return nil
}

func (s *memStore) UpdateBookingWindow(_ context.Context, id int64, start, end time.Time, price float64, ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return fmt.Errorf("%w: booking id %d", booking.ErrNotFound, id)
	}
	b.StartTime = start
	b.EndTime = end
	b.Price = price
	b.ModifiedAt = &ts
	b.UpdatedAt = ts
	s.bookings[id] = b
	return nil
}

func (s *memStore) DeleteCancelledBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, b := range s.bookings {
		if b.Status == db.StatusCancelled && b.CancelledAt != nil && b.CancelledAt.Before(cutoff) {
			delete(s.bookings, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) GetGarage(_ context.Context, id int64) (*db.Garage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.garages[id]
	if !ok {
		return nil, fmt.Errorf("%w: garage %d", booking.ErrNotFound, id)
	}
	return &g, nil
}

func (s *memStore) ListGarages(_ context.Context) ([]db.Garage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Garage
	for _, g := range s.garages {
		out = append(out, g)
	}
	return out, nil
}

func (s *memStore) CreateGarage(_ context.Context, g *db.Garage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	g.ID = s.nextID
	s.garages[g.ID] = *g
	return nil
}

func (s *memStore) UpdateGarageSpots(_ context.Context, id int64, totalSpots int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.garages[id]
	if !ok {
		return fmt.Errorf("%w: garage %d", booking.ErrNotFound, id)
	}
	g.TotalSpots = totalSpots
	s.garages[id] = g
	return nil
}

// recordingNotifier counts emitted events, safe for concurrent use.
type recordingNotifier struct {
	mu        sync.Mutex
	created   int
	cancelled int
}

func (n *recordingNotifier) BookingCreated(db.Booking, db.Garage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created++
}

func (n *recordingNotifier) BookingCancelled(db.Booking, db.Garage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled++
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.created, n.cancelled
}

func newTestService(spots int) (*BookingService, *memStore, *recordingNotifier) {
	store := newMemStore(db.Garage{
		ID: 1, OwnerID: 100, TotalSpots: spots,
		PricePerHour: 10, PricePerDay: 80, PricePerMonth: 2000,
	})
	notifier := &recordingNotifier{}
	return NewBookingService(store, store, notifier), store, notifier
}

func hourlyRequest(startClock, endClock string) entities.BookingWindowRequest {
	return entities.BookingWindowRequest{
		Type: "hourly", Date: testDay, StartClock: startClock, EndClock: endClock,
	}
}

var renter = Renter{ID: 1, Name: "Ana", Email: "ana@example.com"}

func TestRequestBooking_CreatesPendingWithPrice(t *testing.T) {
	svc, _, notifier := newTestService(2)

	b, err := svc.RequestBooking(context.Background(), 1, renter, hourlyRequest("10:00", "12:00"))
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, b.Status)
	assert.Equal(t, 20.0, b.Price)
	assert.NotEmpty(t, b.Code)
	assert.Equal(t, renter.ID, b.UserID)

	created, _ := notifier.counts()
	assert.Equal(t, 1, created)
}

func TestRequestBooking_ThirdRequestRejected(t *testing.T) {
	svc, _, _ := newTestService(2)
	ctx := context.Background()

	_, err := svc.RequestBooking(ctx, 1, renter, hourlyRequest("10:00", "11:00"))
	require.NoError(t, err)
	_, err = svc.RequestBooking(ctx, 1, Renter{ID: 2}, hourlyRequest("10:00", "11:00"))
	require.NoError(t, err)

	_, err = svc.RequestBooking(ctx, 1, Renter{ID: 3}, hourlyRequest("10:00", "11:00"))
	assert.ErrorIs(t, err, booking.ErrNoCapacity)

	avail, err := svc.CheckAvailability(ctx, 1, hourlyRequest("10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, 0, avail.RemainingSpots)
	assert.False(t, avail.IsOverallAvailable)
}

func TestCancelBooking_FreesCapacity(t *testing.T) {
	svc, _, _ := newTestService(1)
	ctx := context.Background()

	a, err := svc.RequestBooking(ctx, 1, renter, hourlyRequest("09:00", "12:00"))
	require.NoError(t, err)
	_, err = svc.RequestBooking(ctx, 1, Renter{ID: 2}, hourlyRequest("10:00", "11:00"))
	require.ErrorIs(t, err, booking.ErrNoCapacity)

	require.NoError(t, svc.CancelBooking(ctx, a.Code, renter.ID))

	_, err = svc.RequestBooking(ctx, 1, Renter{ID: 2}, hourlyRequest("10:00", "11:00"))
	assert.NoError(t, err)
}

func TestCancelBooking_Idempotent(t *testing.T) {
	svc, store, notifier := newTestService(1)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, 1, renter, hourlyRequest("10:00", "11:00"))
	require.NoError(t, err)

	require.NoError(t, svc.CancelBooking(ctx, b.Code, renter.ID))
	require.NoError(t, svc.CancelBooking(ctx, b.Code, renter.ID))

	got, err := store.GetBookingByCode(ctx, b.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)

	_, cancelled := notifier.counts()
	assert.Equal(t, 1, cancelled, "second cancel must not re-emit the event")
}

func TestCancelBooking_ConcurrentCancelsNotifyOnce(t *testing.T) {
	svc, store, notifier := newTestService(1)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, 1, renter, hourlyRequest("10:00", "11:00"))
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.CancelBooking(ctx, b.Code, renter.ID)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	got, err := store.GetBookingByCode(ctx, b.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusCancelled, got.Status)

	_, cancelled := notifier.counts()
	assert.Equal(t, 1, cancelled, "racing cancels must emit exactly one notification")
}

func TestCancelBooking_ForeignUserGetsNotFound(t *testing.T) {
	svc, _, _ := newTestService(1)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, 1, renter, hourlyRequest("10:00", "11:00"))
	require.NoError(t, err)

	err = svc.CancelBooking(ctx, b.Code, 999)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestModifyBooking_RejectedWindowLeavesBookingUntouched(t *testing.T) {
	svc, store, _ := newTestService(2)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, 1, renter, hourlyRequest("14:00", "15:00"))
	require.NoError(t, err)

	// Fill 15:00-16:00 completely with other renters.
	_, err = svc.RequestBooking(ctx, 1, Renter{ID: 2}, hourlyRequest("15:00", "16:00"))
	require.NoError(t, err)
	_, err = svc.RequestBooking(ctx, 1, Renter{ID: 3}, hourlyRequest("15:00", "16:00"))
	require.NoError(t, err)

	err = svc.ModifyBooking(ctx, b.Code, renter.ID, testDay.Add(14*time.Hour), testDay.Add(16*time.Hour))
	require.ErrorIs(t, err, booking.ErrNoCapacity)

	got, err := store.GetBookingByCode(ctx, b.Code)
	require.NoError(t, err)
	assert.Equal(t, testDay.Add(14*time.Hour), got.StartTime)
	assert.Equal(t, testDay.Add(15*time.Hour), got.EndTime)
	assert.Equal(t, db.StatusPending, got.Status)
	assert.Nil(t, got.ModifiedAt)
}

func TestModifyBooking_AcceptedRecomputesPrice(t *testing.T) {
	svc, store, _ := newTestService(2)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, 1, renter, hourlyRequest("14:00", "15:00"))
	require.NoError(t, err)
	require.Equal(t, 10.0, b.Price)

	err = svc.ModifyBooking(ctx, b.Code, renter.ID, testDay.Add(14*time.Hour), testDay.Add(17*time.Hour))
	require.NoError(t, err)

	got, err := store.GetBookingByCode(ctx, b.Code)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.Price)
	assert.Equal(t, testDay.Add(17*time.Hour), got.EndTime)
	assert.NotNil(t, got.ModifiedAt)
}

func TestModifyBooking_RejectsMisalignedBoundaries(t *testing.T) {
	svc, store, _ := newTestService(2)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, 1, renter, hourlyRequest("14:00", "15:00"))
	require.NoError(t, err)

	err = svc.ModifyBooking(ctx, b.Code, renter.ID,
		testDay.Add(14*time.Hour+30*time.Minute), testDay.Add(15*time.Hour+30*time.Minute))
	require.ErrorIs(t, err, booking.ErrInvalidWindow)

	got, err := store.GetBookingByCode(ctx, b.Code)
	require.NoError(t, err)
	assert.Equal(t, testDay.Add(14*time.Hour), got.StartTime)
	assert.Equal(t, testDay.Add(15*time.Hour), got.EndTime)
}

func TestModifyBooking_InvalidState(t *testing.T) {
	svc, _, _ := newTestService(1)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, 1, renter, hourlyRequest("10:00", "11:00"))
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmBooking(ctx, b.Code, 100))

	err = svc.ModifyBooking(ctx, b.Code, renter.ID, testDay.Add(10*time.Hour), testDay.Add(12*time.Hour))
	assert.ErrorIs(t, err, booking.ErrInvalidState)

	c, err := svc.RequestBooking(ctx, 1, renter, hourlyRequest("18:00", "19:00"))
	require.NoError(t, err)
	require.NoError(t, svc.CancelBooking(ctx, c.Code, renter.ID))
	err = svc.ModifyBooking(ctx, c.Code, renter.ID, testDay.Add(18*time.Hour), testDay.Add(20*time.Hour))
	assert.ErrorIs(t, err, booking.ErrInvalidState)
}

func TestConfirmBooking_OnlyOwnerAndOnlyPending(t *testing.T) {
	svc, store, _ := newTestService(1)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, 1, renter, hourlyRequest("10:00", "11:00"))
	require.NoError(t, err)

	err = svc.ConfirmBooking(ctx, b.Code, 999)
	assert.ErrorIs(t, err, booking.ErrNotFound)

	require.NoError(t, svc.ConfirmBooking(ctx, b.Code, 100))
	got, err := store.GetBookingByCode(ctx, b.Code)
	require.NoError(t, err)
	assert.Equal(t, db.StatusConfirmed, got.Status)

	err = svc.ConfirmBooking(ctx, b.Code, 100)
	assert.ErrorIs(t, err, booking.ErrInvalidState)
}

func TestCheckAvailability_MonthlyBlockedByOneHour(t *testing.T) {
	svc, store, _ := newTestService(2)
	ctx := context.Background()

	// Fill one hour twelve days in with unrelated hourly bookings.
	blocked := testDay.AddDate(0, 0, 12)
	require.NoError(t, store.InsertBooking(ctx, &db.Booking{GarageID: 1, UserID: 2, Status: db.StatusPending,
		StartTime: blocked.Add(15 * time.Hour), EndTime: blocked.Add(16 * time.Hour)}))
	require.NoError(t, store.InsertBooking(ctx, &db.Booking{GarageID: 1, UserID: 3, Status: db.StatusConfirmed,
		StartTime: blocked.Add(15 * time.Hour), EndTime: blocked.Add(16 * time.Hour)}))

	_, err := svc.RequestBooking(ctx, 1, renter, entities.BookingWindowRequest{
		Type: "monthly", StartDate: testDay, EndDate: testDay.AddDate(0, 0, 30),
	})
	assert.ErrorIs(t, err, booking.ErrNoCapacity)
}

func TestConcurrentRequests_LastSpotHasOneWinner(t *testing.T) {
	svc, store, _ := newTestService(1)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RequestBooking(ctx, 1, Renter{ID: int64(i + 1)}, hourlyRequest("10:00", "11:00"))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, booking.ErrNoCapacity)
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent request may win the last spot")

	// Capacity invariant: never more than one active booking at 10:00.
	snapshot, err := store.ListBookingsForGarage(ctx, 1)
	require.NoError(t, err)
	active := 0
	at := testDay.Add(10 * time.Hour)
	for _, b := range snapshot {
		if b.Status != db.StatusCancelled && !at.Before(b.StartTime) && at.Before(b.EndTime) {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

// conflictStore wraps memStore and fails the first inserts with a storage
// conflict, exercising the bounded retry.
type conflictStore struct {
	*memStore
	mu       sync.Mutex
	failures int
}

func (s *conflictStore) InsertBooking(ctx context.Context, b *db.Booking) error {
	s.mu.Lock()
	fail := s.failures > 0
	if fail {
		s.failures--
	}
	s.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: insert lost race", booking.ErrStorageConflict)
	}
	return s.memStore.InsertBooking(ctx, b)
}

func TestRequestBooking_RetriesOnStorageConflict(t *testing.T) {
	store := newMemStore(db.Garage{ID: 1, OwnerID: 100, TotalSpots: 1, PricePerHour: 10})
	conflicting := &conflictStore{memStore: store, failures: 2}
	svc := NewBookingService(store, conflicting, &recordingNotifier{})

	b, err := svc.RequestBooking(context.Background(), 1, renter, hourlyRequest("10:00", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, db.StatusPending, b.Status)
}

func TestNewBookingCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := newBookingCode()
		assert.Len(t, code, 8)
		assert.False(t, seen[code], "code %s repeated", code)
		seen[code] = true
	}
}

func TestRequestBooking_ConflictRetriesAreBounded(t *testing.T) {
	store := newMemStore(db.Garage{ID: 1, OwnerID: 100, TotalSpots: 1, PricePerHour: 10})
	conflicting := &conflictStore{memStore: store, failures: 10}
	svc := NewBookingService(store, conflicting, &recordingNotifier{})

	_, err := svc.RequestBooking(context.Background(), 1, renter, hourlyRequest("10:00", "11:00"))
	assert.ErrorIs(t, err, booking.ErrStorageConflict)
}
