package service

import (
	"context"
	"errors"
	"fmt"

	"parkshare/internal/booking"
	"parkshare/internal/db"
	"parkshare/internal/entities"
)

// ErrValidation marks a malformed garage payload.
var ErrValidation = errors.New("invalid garage data")

type GarageService struct {
	garages GarageStore
}

func NewGarageService(garages GarageStore) *GarageService {
	return &GarageService{garages: garages}
}

// PublishGarage creates a new garage listing owned by the caller.
func (s *GarageService) PublishGarage(ctx context.Context, ownerID int64, req entities.GarageRequest) (*db.Garage, error) {
	if req.TotalSpots < 1 {
		return nil, fmt.Errorf("%w: total_spots must be at least 1", ErrValidation)
	}
	if req.PricePerHour < 0 || req.PricePerDay < 0 || req.PricePerMonth < 0 {
		return nil, fmt.Errorf("%w: rates must be non-negative", ErrValidation)
	}
	g := &db.Garage{
		OwnerID:       ownerID,
		Address:       req.Address,
		Description:   req.Description,
		TotalSpots:    req.TotalSpots,
		PricePerHour:  req.PricePerHour,
		PricePerDay:   req.PricePerDay,
		PricePerMonth: req.PricePerMonth,
	}
	if err := s.garages.CreateGarage(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GarageService) GetGarage(ctx context.Context, id int64) (*db.Garage, error) {
	return s.garages.GetGarage(ctx, id)
}

func (s *GarageService) ListGarages(ctx context.Context) ([]db.Garage, error) {
	return s.garages.ListGarages(ctx)
}

// UpdateSpots changes a garage's capacity. Shrinking capacity does not
// cancel existing bookings; availability simply reports zero until enough
// bookings end.
func (s *GarageService) UpdateSpots(ctx context.Context, ownerID, garageID int64, totalSpots int) error {
	if totalSpots < 1 {
		return fmt.Errorf("%w: total_spots must be at least 1", ErrValidation)
	}
	g, err := s.garages.GetGarage(ctx, garageID)
	if err != nil {
		return err
	}
	if g.OwnerID != ownerID {
		return fmt.Errorf("%w: garage %d", booking.ErrNotFound, garageID)
	}
	return s.garages.UpdateGarageSpots(ctx, garageID, totalSpots)
}
