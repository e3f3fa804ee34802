package db

import "time"

// Booking lifecycle states. Cancelled is terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

type Garage struct {
	ID            int64
	OwnerID       int64
	Address       string
	Description   string
	TotalSpots    int
	PricePerHour  float64
	PricePerDay   float64
	PricePerMonth float64
	CreatedAt     time.Time
}

type Booking struct {
	ID          int64
	Code        string
	GarageID    int64
	UserID      int64
	UserName    string
	UserEmail   string
	UserPhone   string
	Type        string // hourly | daily | monthly
	Status      string
	StartTime   time.Time
	EndTime     time.Time
	Price       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CancelledAt *time.Time
	ModifiedAt  *time.Time
}

type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}
