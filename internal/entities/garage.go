package entities

import "time"

type GarageRequest struct {
	Address       string  `json:"address"`
	Description   string  `json:"description"`
	TotalSpots    int     `json:"total_spots"`
	PricePerHour  float64 `json:"price_per_hour"`
	PricePerDay   float64 `json:"price_per_day"`
	PricePerMonth float64 `json:"price_per_month"`
}

type GarageResponse struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"owner_id"`
	Address       string    `json:"address"`
	Description   string    `json:"description"`
	TotalSpots    int       `json:"total_spots"`
	PricePerHour  float64   `json:"price_per_hour"`
	PricePerDay   float64   `json:"price_per_day"`
	PricePerMonth float64   `json:"price_per_month"`
	CreatedAt     time.Time `json:"created_at"`
}
