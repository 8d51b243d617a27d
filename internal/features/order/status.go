package order

import (
	"fmt"
	"strings"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ValidStatuses is the full recognized set, echoed back to callers who send
// anything else.
var ValidStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses {
		if s == valid {
			return true
		}
	}

	return false
}

// IsTerminal reports whether no further transition away from s is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type InvalidStatusError struct {
	Status Status
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf(
		"invalid status %q, valid statuses are: %s",
		e.Status,
		joinStatuses(ValidStatuses),
	)
}

func (e *InvalidStatusError) Unwrap() error {
	return servererrors.ErrInvalidStatus
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf(
		"cannot change status of a %s order",
		e.From,
	)
}

func (e *InvalidTransitionError) Unwrap() error {
	return servererrors.ErrInvalidTransition
}

// ValidateTransition enforces the status state machine: unknown targets are
// rejected outright; terminal states are sticky, except that re-setting a
// terminal status to itself is accepted as an idempotent no-op.
func ValidateTransition(current, next Status) error {
	if !next.IsValid() {
		return &InvalidStatusError{Status: next}
	}

	if current.IsTerminal() && next != current {
		return &InvalidTransitionError{From: current, To: next}
	}

	return nil
}

func joinStatuses(statuses []Status) string {
	strs := make([]string, len(statuses))
	for i, s := range statuses {
		strs[i] = string(s)
	}

	return strings.Join(strs, ", ")
}
