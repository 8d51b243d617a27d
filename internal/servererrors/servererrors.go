package servererrors

import "errors"

// Sentinel errors shared across features. Services return these; handlers and
// [MakeHandler]'s error mapping translate them into HTTP responses.
var (
	ErrInvalidRequestPayload = errors.New("invalid request payload")
	ErrValidationFailed      = errors.New("validation failed")
	ErrURLQueryParams        = errors.New("invalid url query params")

	ErrUnauthorized         = errors.New("unauthorized")
	ErrNoAccessToken        = errors.New("missing access token, access denied")
	ErrInvalidToken         = errors.New("invalid token")
	ErrForbidden            = errors.New("forbidden")
	ErrWrongCredentials     = errors.New("wrong email or password")
	ErrUserAlreadyExists    = errors.New("a user with this email already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrProductAlreadyExists = errors.New("a product with this name already exists")
	ErrProductNotFound      = errors.New("product not found")
	ErrOrderNotFound        = errors.New("order not found")

	ErrInsufficientInventory = errors.New("insufficient quantity for product")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrCompensationFailed    = errors.New("failed to restore inventory after order failure")
	ErrUnavailable           = errors.New("service temporarily unavailable")
)

type ServerError struct {
	StatusCode int
	message    string
	Errors     any
}

func New(statusCode int, message string, errs any) *ServerError {
	return &ServerError{
		StatusCode: statusCode,
		message:    message,
		Errors:     errs,
	}
}

func (e *ServerError) Error() string {
	return e.message
}
