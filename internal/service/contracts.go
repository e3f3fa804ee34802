package service

import (
	"context"
	"time"

	"parkshare/internal/db"
	"parkshare/internal/repository"
)

// BookingStore is the storage contract the lifecycle manager depends on.
// Implementations that detect concurrent-write races return
// booking.ErrStorageConflict; the service retries those calls.
type BookingStore interface {
	ListBookingsForGarage(ctx context.Context, garageID int64) ([]db.Booking, error)
	ListBookingsForUser(ctx context.Context, userID int64) ([]db.Booking, error)
	ListBookings(ctx context.Context, f repository.BookingsFilter) ([]db.Booking, error)
	GetBookingByCode(ctx context.Context, code string) (*db.Booking, error)
	InsertBooking(ctx context.Context, b *db.Booking) error
	UpdateBookingStatus(ctx context.Context, id int64, status string, ts time.Time) error
	UpdateBookingWindow(ctx context.Context, id int64, start, end time.Time, price float64, ts time.Time) error
	DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type GarageStore interface {
	GetGarage(ctx context.Context, id int64) (*db.Garage, error)
	ListGarages(ctx context.Context) ([]db.Garage, error)
	CreateGarage(ctx context.Context, g *db.Garage) error
	UpdateGarageSpots(ctx context.Context, id int64, totalSpots int) error
}

// Notifier delivers booking lifecycle events. Delivery is best-effort:
// failures must never roll back the state change that triggered them.
type Notifier interface {
	BookingCreated(b db.Booking, g db.Garage)
	BookingCancelled(b db.Booking, g db.Garage)
}
