package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parkshare/internal/booking"
	"parkshare/internal/db"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	Create(ctx context.Context, u *db.User) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(database *sql.DB) UserRepository {
	return &userRepository{db: database}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	var u db.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, password_hash, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %q", booking.ErrNotFound, email)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, u *db.User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, phone, password_hash) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		u.Name, u.Email, u.Phone, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
