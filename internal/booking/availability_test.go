package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"parkshare/internal/db"
)

func hourlyBooking(id int64, startHour, endHour int) db.Booking {
	return db.Booking{
		ID:        id,
		GarageID:  1,
		Type:      string(Hourly),
		Status:    db.StatusPending,
		StartTime: testDay.Add(time.Duration(startHour) * time.Hour),
		EndTime:   testDay.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestRemainingAtSlot(t *testing.T) {
	garage := db.Garage{ID: 1, TotalSpots: 2}
	bookings := []db.Booking{
		hourlyBooking(1, 10, 11),
		hourlyBooking(2, 10, 12),
	}

	assert.Equal(t, 0, RemainingAtSlot(garage, bookings, testDay.Add(10*time.Hour), 0))
	assert.Equal(t, 1, RemainingAtSlot(garage, bookings, testDay.Add(11*time.Hour), 0))
	assert.Equal(t, 2, RemainingAtSlot(garage, bookings, testDay.Add(12*time.Hour), 0))
}

func TestRemainingAtSlot_HalfOpenBoundaries(t *testing.T) {
	garage := db.Garage{ID: 1, TotalSpots: 1}
	bookings := []db.Booking{hourlyBooking(1, 10, 11)}

	// A booking occupies its start instant but not its end instant.
	assert.Equal(t, 0, RemainingAtSlot(garage, bookings, testDay.Add(10*time.Hour), 0))
	assert.Equal(t, 1, RemainingAtSlot(garage, bookings, testDay.Add(11*time.Hour), 0))
	assert.Equal(t, 1, RemainingAtSlot(garage, bookings, testDay.Add(9*time.Hour), 0))
}

func TestRemainingAtSlot_IgnoresCancelled(t *testing.T) {
	garage := db.Garage{ID: 1, TotalSpots: 1}
	cancelled := hourlyBooking(1, 10, 11)
	cancelled.Status = db.StatusCancelled

	assert.Equal(t, 1, RemainingAtSlot(garage, []db.Booking{cancelled}, testDay.Add(10*time.Hour), 0))
}

func TestRemainingAtSlot_ExcludesGivenBooking(t *testing.T) {
	garage := db.Garage{ID: 1, TotalSpots: 1}
	bookings := []db.Booking{hourlyBooking(7, 10, 11)}

	assert.Equal(t, 0, RemainingAtSlot(garage, bookings, testDay.Add(10*time.Hour), 0))
	assert.Equal(t, 1, RemainingAtSlot(garage, bookings, testDay.Add(10*time.Hour), 7))
}

func TestRemainingAtSlot_CanGoNegative(t *testing.T) {
	// A historical over-admission must surface as negative, not be hidden.
	garage := db.Garage{ID: 1, TotalSpots: 1}
	bookings := []db.Booking{
		hourlyBooking(1, 10, 11),
		hourlyBooking(2, 10, 11),
	}

	assert.Equal(t, -1, RemainingAtSlot(garage, bookings, testDay.Add(10*time.Hour), 0))
	assert.Equal(t, 0, ClampRemaining(RemainingAtSlot(garage, bookings, testDay.Add(10*time.Hour), 0)))
}

func TestRemainingOverRange_MinimumGoverns(t *testing.T) {
	garage := db.Garage{ID: 1, TotalSpots: 2}
	bookings := []db.Booking{
		hourlyBooking(1, 9, 12),
		hourlyBooking(2, 10, 11),
	}

	// Worst hour is 10:00-11:00 with both bookings overlapping.
	assert.Equal(t, 0, RemainingOverRange(garage, bookings, testDay.Add(9*time.Hour), testDay.Add(12*time.Hour), 0))
	assert.Equal(t, 1, RemainingOverRange(garage, bookings, testDay.Add(11*time.Hour), testDay.Add(12*time.Hour), 0))
	assert.Equal(t, 2, RemainingOverRange(garage, bookings, testDay.Add(13*time.Hour), testDay.Add(15*time.Hour), 0))
}

func TestRemainingOverRange_ZeroSlots(t *testing.T) {
	garage := db.Garage{ID: 1, TotalSpots: 3}
	at := testDay.Add(10 * time.Hour)

	assert.Equal(t, 3, RemainingOverRange(garage, nil, at, at, 0))
}

func TestRemainingOverRange_LongRangeBlockedBySingleHour(t *testing.T) {
	// A month-long request dies on one fully booked hour in the middle,
	// even though every other hour is free.
	garage := db.Garage{ID: 1, TotalSpots: 2}
	blockedHour := testDay.AddDate(0, 0, 12).Add(15 * time.Hour)
	bookings := []db.Booking{
		{ID: 1, Status: db.StatusPending, StartTime: blockedHour, EndTime: blockedHour.Add(time.Hour)},
		{ID: 2, Status: db.StatusConfirmed, StartTime: blockedHour, EndTime: blockedHour.Add(time.Hour)},
	}

	assert.Equal(t, 0, RemainingOverRange(garage, bookings, testDay, testDay.AddDate(0, 0, 30), 0))
}
