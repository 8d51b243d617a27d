package user

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/handlerutils"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/validate"
	"github.com/go-chi/chi"
)

type servicer interface {
	register(ctx context.Context, req *RegisterRequest) error
	login(ctx context.Context, req *LoginRequest) (*TokenPairResponse, error)
	refresh(ctx context.Context, req *RefreshRequest) (*AccessTokenResponse, error)
}

type handler struct {
	service servicer
}

func NewHandler(userService servicer) *handler {
	return &handler{
		service: userService,
	}
}

func (h *handler) RegisterRoutes(router *chi.Mux) {
	router.Post(
		"/auth/register",
		handlerutils.MakeHandler(
			h.registerHandler,
		),
	)

	router.Post(
		"/auth/login",
		handlerutils.MakeHandler(
			h.loginHandler,
		),
	)

	router.Post(
		"/auth/refresh",
		handlerutils.MakeHandler(
			h.refreshHandler,
		),
	)
}

func (h *handler) registerHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *RegisterRequest
	defer r.Body.Close()

	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestPayload.Error(),
			nil,
		)
	}

	if fieldErrs := validate.StructFields(payload); fieldErrs != nil {
		return servererrors.New(
			http.StatusUnprocessableEntity,
			servererrors.ErrValidationFailed.Error(),
			fieldErrs,
		)
	}

	if err := h.service.register(ctx, payload); err != nil {
		if errors.Is(err, servererrors.ErrUserAlreadyExists) {
			return servererrors.New(
				http.StatusUnprocessableEntity,
				servererrors.ErrValidationFailed.Error(),
				map[string]string{
					"email": servererrors.ErrUserAlreadyExists.Error(),
				},
			)
		}

		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusCreated,
		"user created",
		nil,
	)
}

func (h *handler) loginHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *LoginRequest
	defer r.Body.Close()

	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestPayload.Error(),
			nil,
		)
	}

	if fieldErrs := validate.StructFields(payload); fieldErrs != nil {
		return servererrors.New(
			http.StatusUnprocessableEntity,
			servererrors.ErrValidationFailed.Error(),
			fieldErrs,
		)
	}

	tokenPair, err := h.service.login(ctx, payload)
	if err != nil {
		switch {
		case errors.Is(err, servererrors.ErrUserNotFound),
			errors.Is(err, servererrors.ErrWrongCredentials):
			// do not leak whether the email exists
			return servererrors.New(
				http.StatusUnauthorized,
				servererrors.ErrWrongCredentials.Error(),
				nil,
			)

		default:
			return err
		}
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"logged in",
		tokenPair,
	)
}

func (h *handler) refreshHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *RefreshRequest
	defer r.Body.Close()

	if err := handlerutils.ParseJSON(r, &payload); err != nil {
		return servererrors.New(
			http.StatusBadRequest,
			servererrors.ErrInvalidRequestPayload.Error(),
			nil,
		)
	}

	if fieldErrs := validate.StructFields(payload); fieldErrs != nil {
		return servererrors.New(
			http.StatusUnprocessableEntity,
			servererrors.ErrValidationFailed.Error(),
			fieldErrs,
		)
	}

	accessToken, err := h.service.refresh(ctx, payload)
	if err != nil {
		if errors.Is(err, servererrors.ErrInvalidToken) {
			return servererrors.New(
				http.StatusUnauthorized,
				servererrors.ErrInvalidToken.Error(),
				nil,
			)
		}

		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"access token refreshed",
		accessToken,
	)
}
