package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/lib/pq"
)

type store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *store {
	return &store{
		db: db,
	}
}

func (s *store) createOne(ctx context.Context, newUser *User) error {
	query := `INSERT INTO users(name, email, password, role) VALUES($1, $2, $3, $4)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		newUser.Name,
		newUser.Email,
		newUser.Password,
		newUser.Role,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return servererrors.ErrUserAlreadyExists
		}

		return fmt.Errorf(
			"failed to insert new user in user store: %w",
			err,
		)
	}

	return nil
}

func (s *store) findByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT user_id, name, email, password, role, created_at, updated_at FROM users WHERE email = $1`

	foundUser := new(User)
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&foundUser.UserID,
		&foundUser.Name,
		&foundUser.Email,
		&foundUser.Password,
		&foundUser.Role,
		&foundUser.CreatedAt,
		&foundUser.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, servererrors.ErrUserNotFound
		}

		return nil, fmt.Errorf(
			"failed to scan user from user store: %w",
			err,
		)
	}

	return foundUser, nil
}
