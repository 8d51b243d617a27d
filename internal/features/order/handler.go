package order

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/auth"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/handlerutils"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/middlewares"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/validate"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type servicer interface {
	placeOrder(ctx context.Context, userID uuid.UUID, req *PlaceOrderRequest) (*Order, error)
	updateStatus(ctx context.Context, orderID uuid.UUID, req *UpdateOrderStatusRequest) (*Order, error)
	getOrder(ctx context.Context, orderID uuid.UUID) (*Order, error)
	getUserOrders(ctx context.Context, userID uuid.UUID) ([]*Order, error)
	getAllOrders(ctx context.Context) ([]*Order, error)
}

type middleware interface {
	AuthWithContext(h handlerutils.APIHandler, allowedRoles ...auth.Role) handlerutils.APIHandler
}

type handler struct {
	service    servicer
	middleware middleware
}

func NewHandler(orderService servicer, middleware middleware) *handler {
	return &handler{
		service:    orderService,
		middleware: middleware,
	}
}

func (h *handler) RegisterRoutes(router *chi.Mux) {
	router.Post(
		"/orders",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.placeOrderHandler,
			),
		),
	)

	router.Get(
		"/orders/myOrders",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.getUserOrdersHandler,
			),
		),
	)

	router.Get(
		"/orders/{orderID}",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.getOrderHandler,
			),
		),
	)

	// admin only routes
	router.Get(
		"/orders",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.getAllOrdersHandler,
				auth.RoleAdmin,
			),
		),
	)

	router.Put(
		"/orders/{orderID}/status",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.updateOrderStatusHandler,
				auth.RoleAdmin,
			),
		),
	)
}

func (h *handler) placeOrderHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	principal := middlewares.GetPrincipalFromContext(ctx)
	if principal == nil {
		return servererrors.New(
			http.StatusUnauthorized,
			servererrors.ErrUnauthorized.Error(),
			nil,
		)
	}

	var payload *PlaceOrderRequest
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

	placedOrder, err := h.service.placeOrder(ctx, principal.UserID, payload)
	if err != nil {
		return mapOrderError(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusCreated,
		"order placed",
		placedOrder,
	)
}

func (h *handler) getUserOrdersHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	principal := middlewares.GetPrincipalFromContext(ctx)
	if principal == nil {
		return servererrors.New(
			http.StatusUnauthorized,
			servererrors.ErrUnauthorized.Error(),
			nil,
		)
	}

	orders, err := h.service.getUserOrders(ctx, principal.UserID)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"orders retrieved",
		orders,
	)
}

func (h *handler) getOrderHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	orderID, err := parseOrderID(r)
	if err != nil {
		return err
	}

	foundOrder, err := h.service.getOrder(ctx, orderID)
	if err != nil {
		return mapOrderError(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"order found",
		foundOrder,
	)
}

func (h *handler) getAllOrdersHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	orders, err := h.service.getAllOrders(ctx)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"all orders retrieved",
		orders,
	)
}

func (h *handler) updateOrderStatusHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	orderID, err := parseOrderID(r)
	if err != nil {
		return err
	}

	var payload *UpdateOrderStatusRequest
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

	updatedOrder, err := h.service.updateStatus(ctx, orderID, payload)
	if err != nil {
		return mapOrderError(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"order status updated",
		updatedOrder,
	)
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		return uuid.Nil, servererrors.New(
			http.StatusBadRequest,
			"invalid order id",
			nil,
		)
	}

	return orderID, nil
}

// mapOrderError translates workflow errors into HTTP server errors, keeping
// the messages stable for clients.
func mapOrderError(err error) error {
	switch {
	case errors.Is(err, servererrors.ErrCompensationFailed):
		return servererrors.New(
			http.StatusInternalServerError,
			servererrors.ErrCompensationFailed.Error(),
			nil,
		)

	case errors.Is(err, servererrors.ErrOrderNotFound),
		errors.Is(err, servererrors.ErrProductNotFound):
		return servererrors.New(
			http.StatusNotFound,
			err.Error(),
			nil,
		)

	case errors.Is(err, servererrors.ErrInsufficientInventory),
		errors.Is(err, servererrors.ErrInvalidTransition):
		return servererrors.New(
			http.StatusBadRequest,
			err.Error(),
			nil,
		)

	case errors.Is(err, servererrors.ErrInvalidStatus):
		return servererrors.New(
			http.StatusBadRequest,
			err.Error(),
			ValidStatuses,
		)

	default:
		return err
	}
}
