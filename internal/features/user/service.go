package user

import (
	"context"
	"strings"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/auth"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type storer interface {
	createOne(ctx context.Context, newUser *User) error
	findByEmail(ctx context.Context, email string) (*User, error)
}

type tokenManager interface {
	GenerateAccessToken(userID uuid.UUID, role auth.Role) (string, error)
	GenerateRefreshToken(userID uuid.UUID, role auth.Role) (string, error)
	ValidateRefreshToken(tokenStr string) (isValid bool, claims *auth.TokenClaims, err error)
}

type service struct {
	store        storer
	tokenManager tokenManager
}

func NewService(store storer, tokenManager tokenManager) *service {
	return &service{
		store:        store,
		tokenManager: tokenManager,
	}
}

func (s *service) register(ctx context.Context, req *RegisterRequest) error {
	role := auth.RoleCustomer
	if req.Role != "" {
		role = auth.Role(req.Role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword(
		[]byte(req.Password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return err
	}

	return s.store.createOne(
		ctx,
		&User{
			Name:     strings.TrimSpace(req.Name),
			Email:    strings.ToLower(strings.TrimSpace(req.Email)),
			Password: string(hashedPassword),
			Role:     role,
		},
	)
}

func (s *service) login(ctx context.Context, req *LoginRequest) (*TokenPairResponse, error) {
	foundUser, err := s.store.findByEmail(
		ctx,
		strings.ToLower(strings.TrimSpace(req.Email)),
	)
	if err != nil {
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword(
		[]byte(foundUser.Password),
		[]byte(req.Password),
	)
	if err != nil {
		return nil, servererrors.ErrWrongCredentials
	}

	accessToken, err := s.tokenManager.GenerateAccessToken(
		foundUser.UserID,
		foundUser.Role,
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenManager.GenerateRefreshToken(
		foundUser.UserID,
		foundUser.Role,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *service) refresh(_ context.Context, req *RefreshRequest) (*AccessTokenResponse, error) {
	isValid, claims, err := s.tokenManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}

	if !isValid {
		return nil, servererrors.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.EntityID)
	if err != nil {
		return nil, servererrors.ErrInvalidToken
	}

	accessToken, err := s.tokenManager.GenerateAccessToken(
		userID,
		auth.Role(claims.Role),
	)
	if err != nil {
		return nil, err
	}

	return &AccessTokenResponse{
		AccessToken: accessToken,
	}, nil
}
