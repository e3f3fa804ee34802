package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkshare/internal/db"
)

func TestPurgeOldCancelledBookings(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	now := time.Now().UTC()

	old := now.Add(-120 * 24 * time.Hour)
	recent := now.Add(-10 * 24 * time.Hour)

	staleCancelled := db.Booking{GarageID: 1, UserID: 1, Status: db.StatusCancelled, CancelledAt: &old}
	freshCancelled := db.Booking{GarageID: 1, UserID: 2, Status: db.StatusCancelled, CancelledAt: &recent}
	oldPending := db.Booking{GarageID: 1, UserID: 3, Status: db.StatusPending,
		StartTime: old, EndTime: old.Add(time.Hour)}
	require.NoError(t, store.InsertBooking(ctx, &staleCancelled))
	require.NoError(t, store.InsertBooking(ctx, &freshCancelled))
	require.NoError(t, store.InsertBooking(ctx, &oldPending))

	job := NewJobService(store, 90*24*time.Hour)
	job.PurgeOldCancelledBookings()

	left, err := store.ListBookingsForGarage(ctx, 1)
	require.NoError(t, err)
	require.Len(t, left, 2)
	for _, b := range left {
		assert.NotEqual(t, staleCancelled.ID, b.ID)
	}

	// Pending bookings are never expired, no matter how old.
	_, err = store.GetBookingByCode(ctx, oldPending.Code)
	assert.NoError(t, err)
}
