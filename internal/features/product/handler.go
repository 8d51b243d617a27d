package product

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/auth"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/handlerutils"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/validate"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type servicer interface {
	createProduct(ctx context.Context, req *CreateProductRequest) (*Product, error)
	getAllProducts(ctx context.Context, pageOpts *PageOpts) (*GetAllProductsResponse, error)
	getProduct(ctx context.Context, productID uuid.UUID) (*Product, error)
	updateProduct(ctx context.Context, productID uuid.UUID, req *UpdateProductRequest) (*Product, error)
	deleteProduct(ctx context.Context, productID uuid.UUID) error
}

type middleware interface {
	AuthWithContext(h handlerutils.APIHandler, allowedRoles ...auth.Role) handlerutils.APIHandler
}

type handler struct {
	service    servicer
	middleware middleware
}

func NewHandler(productService servicer, middleware middleware) *handler {
	return &handler{
		service:    productService,
		middleware: middleware,
	}
}

func (h *handler) RegisterRoutes(router *chi.Mux) {
	router.Get(
		"/products",
		handlerutils.MakeHandler(
			h.getAllProductsHandler,
		),
	)

	router.Get(
		"/products/{productID}",
		handlerutils.MakeHandler(
			h.getProductHandler,
		),
	)

	// admin only routes
	router.Post(
		"/products",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.createProductHandler,
				auth.RoleAdmin,
			),
		),
	)

	router.Patch(
		"/products/{productID}",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.updateProductHandler,
				auth.RoleAdmin,
			),
		),
	)

	router.Delete(
		"/products/{productID}",
		handlerutils.MakeHandler(
			h.middleware.AuthWithContext(
				h.deleteProductHandler,
				auth.RoleAdmin,
			),
		),
	)
}

func (h *handler) createProductHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	var payload *CreateProductRequest
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

	newProduct, err := h.service.createProduct(ctx, payload)
	if err != nil {
		return mapProductError(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusCreated,
		"product created",
		newProduct,
	)
}

func (h *handler) getAllProductsHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	pageOpts := &PageOpts{
		Page:  parseQueryUint64(r.URL.Query().Get("page"), 1),
		Limit: parseQueryUint64(r.URL.Query().Get("limit"), 10),
	}

	if fieldErrs := validate.StructFields(pageOpts); fieldErrs != nil {
		return servererrors.New(
			http.StatusUnprocessableEntity,
			servererrors.ErrURLQueryParams.Error(),
			fieldErrs,
		)
	}

	response, err := h.service.getAllProducts(ctx, pageOpts)
	if err != nil {
		return err
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"all products retrieved",
		response,
	)
}

func (h *handler) getProductHandler(w http.ResponseWriter, r *http.Request) error {
	productID, err := parseProductID(r)
	if err != nil {
		return err
	}

	foundProduct, err := h.service.getProduct(r.Context(), productID)
	if err != nil {
		return mapProductError(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"product found",
		foundProduct,
	)
}

func (h *handler) updateProductHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	productID, err := parseProductID(r)
	if err != nil {
		return err
	}

	var payload *UpdateProductRequest
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

	updatedProduct, err := h.service.updateProduct(ctx, productID, payload)
	if err != nil {
		return mapProductError(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"product updated",
		updatedProduct,
	)
}

func (h *handler) deleteProductHandler(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(
		r.Context(),
		(30 * time.Second),
	)
	defer cancel()

	productID, err := parseProductID(r)
	if err != nil {
		return err
	}

	if err := h.service.deleteProduct(ctx, productID); err != nil {
		return mapProductError(err)
	}

	return handlerutils.WriteSuccessJSON(
		w,
		http.StatusOK,
		"product deleted",
		nil,
	)
}

func parseProductID(r *http.Request) (uuid.UUID, error) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		return uuid.Nil, servererrors.New(
			http.StatusBadRequest,
			"invalid product id",
			nil,
		)
	}

	return productID, nil
}

// parseQueryUint64 coerces missing, malformed and zero values to the default,
// so ?page=0 reads the first page instead of failing validation.
func parseQueryUint64(field string, defaultValue uint64) uint64 {
	num, err := strconv.ParseUint(field, 10, 0)
	if err != nil || num == 0 {
		return defaultValue
	}

	return num
}

func mapProductError(err error) error {
	switch {
	case errors.Is(err, servererrors.ErrProductNotFound):
		return servererrors.New(
			http.StatusNotFound,
			servererrors.ErrProductNotFound.Error(),
			nil,
		)

	case errors.Is(err, servererrors.ErrProductAlreadyExists):
		return servererrors.New(
			http.StatusConflict,
			servererrors.ErrProductAlreadyExists.Error(),
			nil,
		)

	default:
		return err
	}
}
