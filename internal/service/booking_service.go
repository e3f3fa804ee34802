package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"parkshare/internal/booking"
	"parkshare/internal/db"
	"parkshare/internal/entities"
	"parkshare/internal/metrics"
	"parkshare/internal/repository"
)

// maxConflictRetries bounds internal retries when the store reports a
// concurrent-write conflict.
const maxConflictRetries = 3

// Renter identifies the authenticated user on whose behalf a booking call
// runs. It is always passed explicitly; the engine never reads ambient
// identity.
type Renter struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

// BookingService is the booking lifecycle manager: it owns every state
// transition of a booking and re-validates availability under a per-garage
// lock on each mutating call.
type BookingService struct {
	garages  GarageStore
	bookings BookingStore
	notifier Notifier
	locks    *garageLocks
}

func NewBookingService(garages GarageStore, bookings BookingStore, notifier Notifier) *BookingService {
	return &BookingService{
		garages:  garages,
		bookings: bookings,
		notifier: notifier,
		locks:    newGarageLocks(),
	}
}

// NormalizeWindow converts a raw window request into a canonical interval.
func NormalizeWindow(req entities.BookingWindowRequest) (booking.Window, error) {
	switch booking.ReservationType(req.Type) {
	case booking.Hourly:
		return booking.NewHourlyWindow(req.Date, req.StartClock, req.EndClock)
	case booking.Daily, booking.Monthly:
		return booking.NewRangeWindow(booking.ReservationType(req.Type), req.StartDate, req.EndDate)
	default:
		return booking.Window{}, fmt.Errorf("%w: unknown reservation type %q", booking.ErrInvalidWindow, req.Type)
	}
}

// CheckAvailability reports remaining capacity for a window, with per-slot
// detail for the slot picker. Negative internal counts are reported as zero.
func (s *BookingService) CheckAvailability(ctx context.Context, garageID int64, req entities.BookingWindowRequest) (*entities.AvailabilityResponse, error) {
	w, err := NormalizeWindow(req)
	if err != nil {
		return nil, err
	}
	garage, err := s.garages.GetGarage(ctx, garageID)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.bookings.ListBookingsForGarage(ctx, garageID)
	if err != nil {
		return nil, fmt.Errorf("listing bookings for garage %d: %w", garageID, err)
	}

	resp := &entities.AvailabilityResponse{
		GarageID:           garageID,
		RequestedStartTime: w.Start,
		RequestedEndTime:   w.End,
		IsOverallAvailable: true,
	}
	overall := garage.TotalSpots
	for slot := range w.Hours() {
		remaining := booking.RemainingAtSlot(*garage, snapshot, slot, 0)
		if remaining < overall {
			overall = remaining
		}
		free := booking.ClampRemaining(remaining)
		resp.SlotDetails = append(resp.SlotDetails, entities.TimeSlotAvailability{
			SlotLabel:      booking.SlotLabel(slot),
			StartTime:      slot,
			EndTime:        slot.Add(time.Hour),
			IsAvailable:    free > 0,
			AvailableSpots: free,
		})
		if free == 0 {
			resp.IsOverallAvailable = false
			if resp.FirstUnavailableSlotStart == nil {
				t := slot
				resp.FirstUnavailableSlotStart = &t
			}
		}
	}
	resp.RemainingSpots = booking.ClampRemaining(overall)
	return resp, nil
}

// RequestBooking admits and persists a new pending booking. The snapshot
// read, admission check and insert run under the garage's lock so two
// concurrent requests can never together exceed capacity.
func (s *BookingService) RequestBooking(ctx context.Context, garageID int64, renter Renter, req entities.BookingWindowRequest) (*db.Booking, error) {
	w, err := NormalizeWindow(req)
	if err != nil {
		metrics.AdmissionDecisions.WithLabelValues(metrics.ResultInvalid).Inc()
		return nil, err
	}

	var created *db.Booking
	var garage *db.Garage
	err = s.retryOnConflict(func() error {
		lock := s.locks.forGarage(garageID)
		lock.Lock()
		defer lock.Unlock()

		garage, err = s.garages.GetGarage(ctx, garageID)
		if err != nil {
			return err
		}
		snapshot, err := s.bookings.ListBookingsForGarage(ctx, garageID)
		if err != nil {
			return fmt.Errorf("listing bookings for garage %d: %w", garageID, err)
		}
		decision, err := booking.Admit(*garage, snapshot, w, 0)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		b := &db.Booking{
			Code:      newBookingCode(),
			GarageID:  garageID,
			UserID:    renter.ID,
			UserName:  renter.Name,
			UserEmail: renter.Email,
			UserPhone: renter.Phone,
			Type:      string(w.Type),
			Status:    db.StatusPending,
			StartTime: w.Start,
			EndTime:   w.End,
			Price:     decision.Price,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.bookings.InsertBooking(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	metrics.AdmissionDecisions.WithLabelValues(admissionResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.notifier.BookingCreated(*created, *garage)
	return created, nil
}

// CancelBooking transitions a booking to cancelled. Cancelling an already
// cancelled booking is a no-op success and emits no second notification.
// The status check and transition run under the garage lock so two
// concurrent cancels of the same booking cannot both see it pending.
func (s *BookingService) CancelBooking(ctx context.Context, code string, userID int64) error {
	pre, err := s.bookings.GetBookingByCode(ctx, code)
	if err != nil {
		return err
	}
	if pre.UserID != userID {
		return fmt.Errorf("%w: booking %q", booking.ErrNotFound, code)
	}

	var cancelled *db.Booking
	err = s.retryOnConflict(func() error {
		lock := s.locks.forGarage(pre.GarageID)
		lock.Lock()
		defer lock.Unlock()
		cancelled = nil

		b, err := s.bookings.GetBookingByCode(ctx, code)
		if err != nil {
			return err
		}
		if b.Status == db.StatusCancelled {
			return nil
		}

		now := time.Now().UTC()
		if err := s.bookings.UpdateBookingStatus(ctx, b.ID, db.StatusCancelled, now); err != nil {
			return err
		}
		b.Status = db.StatusCancelled
		b.CancelledAt = &now
		b.UpdatedAt = now
		cancelled = b
		return nil
	})
	if err != nil {
		return err
	}
	if cancelled == nil {
		return nil
	}
	metrics.BookingsCancelled.Inc()

	garage, err := s.garages.GetGarage(ctx, cancelled.GarageID)
	if err != nil {
		log.Printf("booking %s cancelled but garage %d lookup failed for notification: %v", code, cancelled.GarageID, err)
		return nil
	}
	s.notifier.BookingCancelled(*cancelled, *garage)
	return nil
}

// ModifyBooking replaces the window of a pending booking, re-admitting the
// new window as if it were a fresh request that excludes the booking's own
// old window from capacity accounting. On rejection the booking is left
// untouched.
func (s *BookingService) ModifyBooking(ctx context.Context, code string, userID int64, newStart, newEnd time.Time) error {
	pre, err := s.bookings.GetBookingByCode(ctx, code)
	if err != nil {
		return err
	}
	if pre.UserID != userID {
		return fmt.Errorf("%w: booking %q", booking.ErrNotFound, code)
	}

	return s.retryOnConflict(func() error {
		lock := s.locks.forGarage(pre.GarageID)
		lock.Lock()
		defer lock.Unlock()

		// Re-read under the lock: the booking may have been cancelled or
		// confirmed since the pre-read.
		b, err := s.bookings.GetBookingByCode(ctx, code)
		if err != nil {
			return err
		}
		if b.Status != db.StatusPending {
			return fmt.Errorf("%w: booking %q is %s", booking.ErrInvalidState, code, b.Status)
		}
		w, err := booking.NewWindow(booking.ReservationType(b.Type), newStart, newEnd)
		if err != nil {
			return err
		}

		garage, err := s.garages.GetGarage(ctx, b.GarageID)
		if err != nil {
			return err
		}
		snapshot, err := s.bookings.ListBookingsForGarage(ctx, b.GarageID)
		if err != nil {
			return fmt.Errorf("listing bookings for garage %d: %w", b.GarageID, err)
		}
		decision, err := booking.Admit(*garage, snapshot, w, b.ID)
		if err != nil {
			return err
		}
		return s.bookings.UpdateBookingWindow(ctx, b.ID, w.Start, w.End, decision.Price, time.Now().UTC())
	})
}

// ConfirmBooking moves a pending booking to confirmed (owner action).
func (s *BookingService) ConfirmBooking(ctx context.Context, code string, ownerID int64) error {
	b, err := s.bookings.GetBookingByCode(ctx, code)
	if err != nil {
		return err
	}
	garage, err := s.garages.GetGarage(ctx, b.GarageID)
	if err != nil {
		return err
	}
	if garage.OwnerID != ownerID {
		return fmt.Errorf("%w: booking %q", booking.ErrNotFound, code)
	}
	if b.Status != db.StatusPending {
		return fmt.Errorf("%w: booking %q is %s", booking.ErrInvalidState, code, b.Status)
	}
	return s.retryOnConflict(func() error {
		return s.bookings.UpdateBookingStatus(ctx, b.ID, db.StatusConfirmed, time.Now().UTC())
	})
}

func (s *BookingService) GetBooking(ctx context.Context, code string, userID int64) (*db.Booking, error) {
	b, err := s.bookings.GetBookingByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, fmt.Errorf("%w: booking %q", booking.ErrNotFound, code)
	}
	return b, nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]db.Booking, error) {
	return s.bookings.ListBookingsForUser(ctx, userID)
}

// ListGarageBookings is the owner-side listing with optional filters.
func (s *BookingService) ListGarageBookings(ctx context.Context, ownerID int64, f repository.BookingsFilter) ([]db.Booking, error) {
	garage, err := s.garages.GetGarage(ctx, f.GarageID)
	if err != nil {
		return nil, err
	}
	if garage.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: garage %d", booking.ErrNotFound, f.GarageID)
	}
	return s.bookings.ListBookings(ctx, f)
}

// retryOnConflict runs fn, retrying a bounded number of times while the
// store keeps reporting a concurrent-write conflict.
func (s *BookingService) retryOnConflict(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = fn()
		if !errors.Is(err, booking.ErrStorageConflict) {
			return err
		}
		metrics.StorageConflictRetries.Inc()
	}
	return err
}

func admissionResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultAccepted
	case errors.Is(err, booking.ErrNoCapacity):
		return metrics.ResultNoCapacity
	case errors.Is(err, booking.ErrInvalidWindow):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}

// newBookingCode draws a random 8-hex-digit code. The bookings.code column
// is unique; an insert losing the birthday lottery surfaces as a storage
// conflict and is retried with a fresh code.
func newBookingCode() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("%X", buf[:])
}
