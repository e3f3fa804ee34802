package booking

import (
	"fmt"
	"iter"
	"time"
)

// ReservationType selects the billing granularity of a booking. All types
// draw from the same pool of spots; the type only affects pricing and how
// a request is normalized into a window.
type ReservationType string

const (
	Hourly  ReservationType = "hourly"
	Daily   ReservationType = "daily"
	Monthly ReservationType = "monthly"
)

func (t ReservationType) Valid() bool {
	return t == Hourly || t == Daily || t == Monthly
}

const clockFormat = "15:04"

// hourAligned reports whether t falls exactly on an hour boundary. Slot
// accounting samples hour boundaries, so every persisted window must be
// aligned or overlapping bookings could escape the capacity count.
func hourAligned(t time.Time) bool {
	return t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// Window is a normalized half-open reservation interval [Start, End).
type Window struct {
	Type  ReservationType
	Start time.Time
	End   time.Time
}

// NewHourlyWindow builds a window from a calendar date and two clock labels
// ("HH:00"). When endClock is at or before startClock the end rolls over to
// the next day, so 23:00-01:00 is a two hour booking. Equal clocks count as
// one hour.
func NewHourlyWindow(date time.Time, startClock, endClock string) (Window, error) {
	if date.IsZero() || startClock == "" || endClock == "" {
		return Window{}, fmt.Errorf("%w: missing date or clock boundary", ErrInvalidWindow)
	}
	start, err := time.Parse(clockFormat, startClock)
	if err != nil {
		return Window{}, fmt.Errorf("%w: bad start clock %q", ErrInvalidWindow, startClock)
	}
	end, err := time.Parse(clockFormat, endClock)
	if err != nil {
		return Window{}, fmt.Errorf("%w: bad end clock %q", ErrInvalidWindow, endClock)
	}

	hours := (end.Hour() - start.Hour()) % 24
	if hours < 0 {
		hours += 24
	}
	if hours == 0 {
		hours = 1
	}

	startAt := time.Date(date.Year(), date.Month(), date.Day(), start.Hour(), 0, 0, 0, date.Location())
	return Window{
		Type:  Hourly,
		Start: startAt,
		End:   startAt.Add(time.Duration(hours) * time.Hour),
	}, nil
}

// NewRangeWindow builds a daily or monthly window [startDate, endDate).
func NewRangeWindow(rtype ReservationType, startDate, endDate time.Time) (Window, error) {
	if rtype != Daily && rtype != Monthly {
		return Window{}, fmt.Errorf("%w: reservation type %q is not a range type", ErrInvalidWindow, rtype)
	}
	if startDate.IsZero() || endDate.IsZero() {
		return Window{}, fmt.Errorf("%w: missing range boundary", ErrInvalidWindow)
	}
	if !endDate.After(startDate) {
		return Window{}, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidWindow, endDate, startDate)
	}
	if !hourAligned(startDate) || !hourAligned(endDate) {
		return Window{}, fmt.Errorf("%w: boundaries must fall on an hour", ErrInvalidWindow)
	}
	return Window{Type: rtype, Start: startDate, End: endDate}, nil
}

// NewWindow builds a window of any type directly from two instants, used
// when re-validating a modified booking whose boundaries are already known.
func NewWindow(rtype ReservationType, start, end time.Time) (Window, error) {
	if !rtype.Valid() {
		return Window{}, fmt.Errorf("%w: unknown reservation type %q", ErrInvalidWindow, rtype)
	}
	if start.IsZero() || end.IsZero() {
		return Window{}, fmt.Errorf("%w: missing boundary", ErrInvalidWindow)
	}
	if !end.After(start) {
		return Window{}, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidWindow, end, start)
	}
	if !hourAligned(start) || !hourAligned(end) {
		return Window{}, fmt.Errorf("%w: boundaries must fall on an hour", ErrInvalidWindow)
	}
	return Window{Type: rtype, Start: start, End: end}, nil
}

// Hours yields every hour boundary of the window, from Start up to but
// excluding End. The sequence is finite and can be ranged over repeatedly.
func (w Window) Hours() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for t := w.Start; t.Before(w.End); t = t.Add(time.Hour) {
			if !yield(t) {
				return
			}
		}
	}
}

// SlotLabel renders the "HH:00" label of an hour slot, as shown in slot pickers.
func SlotLabel(t time.Time) string {
	return fmt.Sprintf("%02d:00", t.Hour())
}

// Duration of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// BillingUnits is the number of whole billing units the window spans for
// its reservation type, rounding partial units up. A month is billed as 30
// days.
func (w Window) BillingUnits() int {
	var unit time.Duration
	switch w.Type {
	case Daily:
		unit = 24 * time.Hour
	case Monthly:
		unit = 30 * 24 * time.Hour
	default:
		unit = time.Hour
	}
	d := w.Duration()
	units := int(d / unit)
	if d%unit > 0 {
		units++
	}
	if units == 0 {
		units = 1
	}
	return units
}
