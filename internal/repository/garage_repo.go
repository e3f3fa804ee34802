package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"parkshare/internal/booking"
	"parkshare/internal/db"
)

var garageColumns = []string{
	"id", "owner_id", "address", "description", "total_spots",
	"price_per_hour", "price_per_day", "price_per_month", "created_at",
}

type GarageRepository struct {
	DB *sql.DB
}

func NewGarageRepository(database *sql.DB) *GarageRepository {
	return &GarageRepository{DB: database}
}

func (r *GarageRepository) GetGarage(ctx context.Context, id int64) (*db.Garage, error) {
	query, args, err := psql.Select(garageColumns...).
		From("garages").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get garage query: %w", err)
	}
	var g db.Garage
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(
		&g.ID, &g.OwnerID, &g.Address, &g.Description, &g.TotalSpots,
		&g.PricePerHour, &g.PricePerDay, &g.PricePerMonth, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: garage %d", booking.ErrNotFound, id)
		}
		return nil, fmt.Errorf("query garage: %w", err)
	}
	return &g, nil
}

func (r *GarageRepository) ListGarages(ctx context.Context) ([]db.Garage, error) {
	query, args, err := psql.Select(garageColumns...).
		From("garages").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list garages query: %w", err)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query garages: %w", err)
	}
	defer rows.Close()

	var garages []db.Garage
	for rows.Next() {
		var g db.Garage
		err := rows.Scan(
			&g.ID, &g.OwnerID, &g.Address, &g.Description, &g.TotalSpots,
			&g.PricePerHour, &g.PricePerDay, &g.PricePerMonth, &g.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan garage row: %w", err)
		}
		garages = append(garages, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate garage rows: %w", err)
	}
	return garages, nil
}

func (r *GarageRepository) CreateGarage(ctx context.Context, g *db.Garage) error {
	query, args, err := psql.Insert("garages").
		Columns("owner_id", "address", "description", "total_spots", "price_per_hour", "price_per_day", "price_per_month").
		Values(g.OwnerID, g.Address, g.Description, g.TotalSpots, g.PricePerHour, g.PricePerDay, g.PricePerMonth).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert garage query: %w", err)
	}
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&g.ID, &g.CreatedAt); err != nil {
		return fmt.Errorf("insert garage: %w", err)
	}
	return nil
}

func (r *GarageRepository) UpdateGarageSpots(ctx context.Context, id int64, totalSpots int) error {
	query, args, err := psql.Update("garages").
		Set("total_spots", totalSpots).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update spots query: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update garage spots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: garage %d", booking.ErrNotFound, id)
	}
	return nil
}
