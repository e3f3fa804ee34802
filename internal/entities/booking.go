package entities

import "time"

// BookingWindowRequest carries the raw reservation window from the client.
// Hourly requests send date + clock labels; daily/monthly requests send a
// date range. Normalization into instants happens in the booking engine.
type BookingWindowRequest struct {
	Type       string    `json:"type"` // hourly | daily | monthly
	Date       time.Time `json:"date,omitempty"`
	StartClock string    `json:"start_clock,omitempty"` // "HH:00"
	EndClock   string    `json:"end_clock,omitempty"`
	StartDate  time.Time `json:"start_date,omitempty"`
	EndDate    time.Time `json:"end_date,omitempty"`
}

type BookingResponse struct {
	Code        string     `json:"code"`
	GarageID    int64      `json:"garage_id"`
	UserID      int64      `json:"user_id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	Price       float64    `json:"price"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	ModifiedAt  *time.Time `json:"modified_at,omitempty"`
}

type BookingsList struct {
	Total    int               `json:"total"`
	Bookings []BookingResponse `json:"bookings"`
}
