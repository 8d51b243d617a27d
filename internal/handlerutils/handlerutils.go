package handlerutils

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/config"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
)

// APIHandler is an [http.HandlerFunc] that returns an error so that error
// handling, logging and response mapping live in one place.
type APIHandler func(w http.ResponseWriter, r *http.Request) error

// envelope is the response shape every endpoint writes.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// MakeHandler wraps an [APIHandler] into an [http.HandlerFunc] with
// centralized error handling. Known [servererrors.ServerError] values map to
// their status code; context deadline errors map to 503; everything else is
// logged and surfaced as a generic 500, with the underlying error echoed only
// in development mode.
func MakeHandler(h APIHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		log.Println(err)

		var serverError *servererrors.ServerError
		if errors.As(err, &serverError) {
			WriteErrorJSON(
				w,
				serverError.StatusCode,
				serverError.Error(),
				serverError.Errors,
			)
			return
		}

		if errors.Is(err, context.DeadlineExceeded) {
			WriteErrorJSON(
				w,
				http.StatusServiceUnavailable,
				servererrors.ErrUnavailable.Error(),
				nil,
			)
			return
		}

		// unexpected errors only carry their detail in development
		var detail any
		if config.IsDevelopment() {
			detail = err.Error()
		}

		WriteErrorJSON(
			w,
			http.StatusInternalServerError,
			"something went wrong",
			detail,
		)
	}
}

func ParseJSON(r *http.Request, payload any) error {
	if r.Body == nil {
		return servererrors.ErrInvalidRequestPayload
	}

	return json.NewDecoder(r.Body).Decode(payload)
}

func WriteSuccessJSON(w http.ResponseWriter, statusCode int, message string, data any) error {
	return writeJSON(
		w,
		statusCode,
		&envelope{
			Success: true,
			Message: message,
			Data:    data,
		},
	)
}

func WriteErrorJSON(w http.ResponseWriter, statusCode int, message string, errs any) error {
	return writeJSON(
		w,
		statusCode,
		&envelope{
			Success: false,
			Message: message,
			Errors:  errs,
		},
	)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return json.NewEncoder(w).Encode(v)
}
