package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/google/uuid"
)

type stockLevel struct {
	productName      string
	quantity         uint
	restockThreshold uint
}

type store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *store {
	return &store{
		db: db,
	}
}

// reserveStock decrements the product's quantity in a single conditional
// UPDATE. The quantity check and the write are one atomic statement; there is
// no read-then-write window for a concurrent order to slip into.
func (s *store) reserveStock(ctx context.Context, productID uuid.UUID, quantity uint) error {
	query := `UPDATE products
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE product_id = $1 AND quantity >= $2`

	result, err := s.db.ExecContext(
		ctx,
		query,
		productID,
		quantity,
	)
	if err != nil {
		return fmt.Errorf(
			"failed to reserve stock in inventory store: %w",
			err,
		)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected > 0 {
		return nil
	}

	// the conditional update matched nothing; find out whether the product
	// is missing or just short on stock
	var name string
	err = s.db.QueryRowContext(
		ctx,
		`SELECT name FROM products WHERE product_id = $1`,
		productID,
	).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return servererrors.ErrProductNotFound
		}

		return fmt.Errorf(
			"failed to look up product in inventory store: %w",
			err,
		)
	}

	return &InsufficientInventoryError{
		ProductID:   productID,
		ProductName: name,
	}
}

// releaseStock is the compensating increment for a reservation that has to be
// undone.
func (s *store) releaseStock(ctx context.Context, productID uuid.UUID, quantity uint) error {
	query := `UPDATE products
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE product_id = $1`

	result, err := s.db.ExecContext(
		ctx,
		query,
		productID,
		quantity,
	)
	if err != nil {
		return fmt.Errorf(
			"failed to release stock in inventory store: %w",
			err,
		)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return servererrors.ErrProductNotFound
	}

	return nil
}

func (s *store) getStockLevel(ctx context.Context, productID uuid.UUID) (*stockLevel, error) {
	query := `SELECT name, quantity, restock_threshold FROM products WHERE product_id = $1`

	level := new(stockLevel)
	err := s.db.QueryRowContext(ctx, query, productID).Scan(
		&level.productName,
		&level.quantity,
		&level.restockThreshold,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, servererrors.ErrProductNotFound
		}

		return nil, fmt.Errorf(
			"failed to get stock level from inventory store: %w",
			err,
		)
	}

	return level, nil
}
