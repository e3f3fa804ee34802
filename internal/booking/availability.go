package booking

import (
	"time"

	"parkshare/internal/db"
)

// RemainingAtSlot returns how many spots of the garage are free at the given
// instant: total spots minus the number of non-cancelled bookings whose
// [start, end) interval contains it. The booking with excludeID (0 = none)
// is ignored, which lets a modification re-validate without counting its own
// old window.
//
// The result can go negative if a past race over-admitted; callers must treat
// anything <= 0 as "full", never as free space.
func RemainingAtSlot(garage db.Garage, bookings []db.Booking, slot time.Time, excludeID int64) int {
	occupied := 0
	for _, b := range bookings {
		if b.Status == db.StatusCancelled {
			continue
		}
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if !slot.Before(b.StartTime) && slot.Before(b.EndTime) {
			occupied++
		}
	}
	return garage.TotalSpots - occupied
}

// RemainingOverRange returns the minimum RemainingAtSlot across every hour
// slot of [start, end). The worst hour governs whether the whole range can be
// booked, since hourly, daily and monthly bookings all share one spot pool.
// A range with no slots leaves the garage untouched and reports full capacity.
func RemainingOverRange(garage db.Garage, bookings []db.Booking, start, end time.Time, excludeID int64) int {
	w := Window{Start: start, End: end}
	remaining := garage.TotalSpots
	for slot := range w.Hours() {
		if r := RemainingAtSlot(garage, bookings, slot, excludeID); r < remaining {
			remaining = r
		}
	}
	return remaining
}

// RemainingForWindow dispatches on the window type: a single-slot check for
// hourly windows would be wrong, because an hourly window can still span
// several hours, so every window is checked hour by hour.
func RemainingForWindow(garage db.Garage, bookings []db.Booking, w Window, excludeID int64) int {
	return RemainingOverRange(garage, bookings, w.Start, w.End, excludeID)
}

// ClampRemaining converts a raw remaining count into the externally visible
// value: negative results (from a historical over-admission) always report
// zero spots free.
func ClampRemaining(r int) int {
	if r < 0 {
		return 0
	}
	return r
}
