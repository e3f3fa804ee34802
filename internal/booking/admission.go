package booking

import (
	"fmt"

	"parkshare/internal/db"
)

// Decision is the accepted outcome of an admission check.
type Decision struct {
	Window Window
	Price  float64
}

// Admit decides whether a candidate window may be booked against the
// garage's current booking snapshot. It is a pure function: persistence and
// locking are the lifecycle manager's job. Exactly TotalSpots concurrent
// bookings are allowed per hour; the TotalSpots+1-th request is rejected.
//
// excludeID identifies a booking being modified so its old window does not
// count against itself; pass 0 for a new booking.
func Admit(garage db.Garage, bookings []db.Booking, w Window, excludeID int64) (Decision, error) {
	if !w.End.After(w.Start) {
		return Decision{}, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidWindow, w.End, w.Start)
	}
	if !hourAligned(w.Start) || !hourAligned(w.End) {
		return Decision{}, fmt.Errorf("%w: boundaries must fall on an hour", ErrInvalidWindow)
	}
	if remaining := RemainingForWindow(garage, bookings, w, excludeID); remaining <= 0 {
		return Decision{}, fmt.Errorf("%w: garage %d between %s and %s",
			ErrNoCapacity, garage.ID, w.Start.Format("2006-01-02 15:04"), w.End.Format("2006-01-02 15:04"))
	}
	return Decision{Window: w, Price: Price(garage, w)}, nil
}

// Price computes the charge for a window: billing units times the garage's
// rate for the reservation type.
func Price(garage db.Garage, w Window) float64 {
	units := float64(w.BillingUnits())
	switch w.Type {
	case Daily:
		return units * garage.PricePerDay
	case Monthly:
		return units * garage.PricePerMonth
	default:
		return units * garage.PricePerHour
	}
}
