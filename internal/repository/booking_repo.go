package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"parkshare/internal/booking"
	"parkshare/internal/db"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var bookingColumns = []string{
	"id", "code", "garage_id", "user_id", "user_name", "user_email", "user_phone",
	"type", "status", "start_time", "end_time", "price",
	"created_at", "updated_at", "cancelled_at", "modified_at",
}

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

// ListBookingsForGarage returns the full booking snapshot of a garage, all
// statuses included. The lifecycle manager re-fetches this under its
// per-garage lock before every admission check.
func (r *BookingRepository) ListBookingsForGarage(ctx context.Context, garageID int64) ([]db.Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"garage_id": garageID}).
		OrderBy("start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings query: %w", err)
	}
	return r.queryBookings(ctx, query, args...)
}

// ListBookingsForUser returns a renter's bookings, newest first.
func (r *BookingRepository) ListBookingsForUser(ctx context.Context, userID int64) ([]db.Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list user bookings query: %w", err)
	}
	return r.queryBookings(ctx, query, args...)
}

// BookingsFilter narrows an owner-side booking listing. Zero values mean
// "no filter".
type BookingsFilter struct {
	GarageID int64
	Status   string
	Date     time.Time // bookings whose window touches this calendar day
}

func (r *BookingRepository) ListBookings(ctx context.Context, f BookingsFilter) ([]db.Booking, error) {
	q := psql.Select(bookingColumns...).From("bookings").OrderBy("start_time DESC")
	if f.GarageID != 0 {
		q = q.Where(sq.Eq{"garage_id": f.GarageID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if !f.Date.IsZero() {
		dayStart := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, f.Date.Location())
		q = q.Where(sq.Lt{"start_time": dayStart.Add(24 * time.Hour)}).
			Where(sq.Gt{"end_time": dayStart})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build filtered bookings query: %w", err)
	}
	return r.queryBookings(ctx, query, args...)
}

func (r *BookingRepository) GetBookingByCode(ctx context.Context, code string) (*db.Booking, error) {
	query, args, err := psql.Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query: %w", err)
	}
	row := r.DB.QueryRowContext(ctx, query, args...)
	b, err := scanBookingRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %q", booking.ErrNotFound, code)
		}
		return nil, fmt.Errorf("query booking by code: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) InsertBooking(ctx context.Context, b *db.Booking) error {
	query, args, err := psql.Insert("bookings").
		Columns("code", "garage_id", "user_id", "user_name", "user_email", "user_phone",
			"type", "status", "start_time", "end_time", "price", "created_at", "updated_at").
		Values(b.Code, b.GarageID, b.UserID, b.UserName, b.UserEmail, b.UserPhone,
			b.Type, b.Status, b.StartTime, b.EndTime, b.Price, b.CreatedAt, b.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert booking query: %w", err)
	}
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&b.ID); err != nil {
		// A duplicate code trips the unique constraint; the lifecycle
		// manager retries the insert with a fresh code.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: booking code %q already taken", booking.ErrStorageConflict, b.Code)
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

// UpdateBookingStatus transitions a booking and stamps cancelled_at when the
// new status is cancelled.
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id int64, status string, ts time.Time) error {
	q := psql.Update("bookings").
		Set("status", status).
		Set("updated_at", ts).
		Where(sq.Eq{"id": id})
	if status == db.StatusCancelled {
		q = q.Set("cancelled_at", ts)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update status query: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return requireRowAffected(res, id)
}

func (r *BookingRepository) UpdateBookingWindow(ctx context.Context, id int64, start, end time.Time, price float64, ts time.Time) error {
	query, args, err := psql.Update("bookings").
		Set("start_time", start).
		Set("end_time", end).
		Set("price", price).
		Set("modified_at", ts).
		Set("updated_at", ts).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update window query: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking window: %w", err)
	}
	return requireRowAffected(res, id)
}

// DeleteCancelledBefore removes cancelled bookings older than the cutoff.
// Pending and confirmed rows are never touched here.
func (r *BookingRepository) DeleteCancelledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := psql.Delete("bookings").
		Where(sq.Eq{"status": db.StatusCancelled}).
		Where(sq.Lt{"cancelled_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build cleanup query: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete old cancelled bookings: %w", err)
	}
	return res.RowsAffected()
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]db.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBookingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBookingRow(row rowScanner) (*db.Booking, error) {
	var b db.Booking
	var cancelledAt, modifiedAt sql.NullTime
	err := row.Scan(
		&b.ID, &b.Code, &b.GarageID, &b.UserID, &b.UserName, &b.UserEmail, &b.UserPhone,
		&b.Type, &b.Status, &b.StartTime, &b.EndTime, &b.Price,
		&b.CreatedAt, &b.UpdatedAt, &cancelledAt, &modifiedAt,
	)
	if err != nil {
		return nil, err
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if modifiedAt.Valid {
		b.ModifiedAt = &modifiedAt.Time
	}
	return &b, nil
}

func requireRowAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: booking id %d", booking.ErrNotFound, id)
	}
	return nil
}
