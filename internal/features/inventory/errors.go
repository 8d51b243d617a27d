package inventory

import (
	"fmt"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/google/uuid"
)

// InsufficientInventoryError carries the product id and name so callers can
// tell the user which line item failed. It unwraps to
// [servererrors.ErrInsufficientInventory] for errors.Is checks.
type InsufficientInventoryError struct {
	ProductID   uuid.UUID
	ProductName string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf(
		"insufficient quantity for product %q",
		e.ProductName,
	)
}

func (e *InsufficientInventoryError) Unwrap() error {
	return servererrors.ErrInsufficientInventory
}
