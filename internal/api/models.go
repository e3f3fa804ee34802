package api

import (
	"time"

	"parkshare/internal/db"
	"parkshare/internal/entities"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// AvailabilityRequest wraps a window request with the target garage.
type AvailabilityRequest struct {
	GarageID int64 `json:"garage_id"`
	entities.BookingWindowRequest
}

type ModifyBookingRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type UpdateSpotsRequest struct {
	TotalSpots int `json:"total_spots"`
}

func toBookingResponse(b db.Booking) entities.BookingResponse {
	return entities.BookingResponse{
		Code:        b.Code,
		GarageID:    b.GarageID,
		UserID:      b.UserID,
		Type:        b.Type,
		Status:      b.Status,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Price:       b.Price,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		CancelledAt: b.CancelledAt,
		ModifiedAt:  b.ModifiedAt,
	}
}

func toBookingsList(bookings []db.Booking) entities.BookingsList {
	list := entities.BookingsList{Total: len(bookings), Bookings: []entities.BookingResponse{}}
	for _, b := range bookings {
		list.Bookings = append(list.Bookings, toBookingResponse(b))
	}
	return list
}

func toGarageResponse(g db.Garage) entities.GarageResponse {
	return entities.GarageResponse{
		ID:            g.ID,
		OwnerID:       g.OwnerID,
		Address:       g.Address,
		Description:   g.Description,
		TotalSpots:    g.TotalSpots,
		PricePerHour:  g.PricePerHour,
		PricePerDay:   g.PricePerDay,
		PricePerMonth: g.PricePerMonth,
		CreatedAt:     g.CreatedAt,
	}
}
