package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/auth"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/handlerutils"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/google/uuid"
)

type contextKey struct{}

var PrincipalKey contextKey = contextKey{}

// AuthWithContext validates the bearer token, checks the principal's role
// against allowedRoles and stores the principal in the request context.
func (mw *middleware) AuthWithContext(h handlerutils.APIHandler, allowedRoles ...auth.Role) handlerutils.APIHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return servererrors.New(
				http.StatusUnauthorized,
				servererrors.ErrNoAccessToken.Error(),
				nil,
			)
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")

		isValid, claims, err := mw.jwtManager.ValidateAccessToken(tokenStr)
		if err != nil {
			return err
		}

		if !isValid {
			return servererrors.New(
				http.StatusUnauthorized,
				servererrors.ErrInvalidToken.Error(),
				nil,
			)
		}

		userID, err := uuid.Parse(claims.EntityID)
		if err != nil {
			return servererrors.New(
				http.StatusUnauthorized,
				servererrors.ErrInvalidToken.Error(),
				nil,
			)
		}

		principal := &auth.Principal{
			UserID: userID,
			Role:   auth.Role(claims.Role),
		}

		if len(allowedRoles) > 0 && !auth.HasRole(principal, allowedRoles...) {
			return servererrors.New(
				http.StatusForbidden,
				servererrors.ErrForbidden.Error(),
				nil,
			)
		}

		ctx := context.WithValue(
			r.Context(),
			PrincipalKey,
			principal,
		)
		r = r.WithContext(ctx)

		return h(w, r)
	}
}

func GetPrincipalFromContext(ctx context.Context) *auth.Principal {
	principal, ok := ctx.Value(PrincipalKey).(*auth.Principal)
	if !ok {
		return nil
	}

	return principal
}
