package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenClaims struct {
	EntityID string `json:"entityID"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type TokenService struct {
	accessTokenSecret        []byte
	refreshTokenSecret       []byte
	accessTokenExpiryInSecs  int64
	refreshTokenExpiryInSecs int64
}

func NewTokenService(
	accessTokenSecret string,
	refreshTokenSecret string,
	accessTokenExpiryInSecs int64,
	refreshTokenExpiryInSecs int64,
) *TokenService {
	return &TokenService{
		accessTokenSecret:        []byte(accessTokenSecret),
		refreshTokenSecret:       []byte(refreshTokenSecret),
		accessTokenExpiryInSecs:  accessTokenExpiryInSecs,
		refreshTokenExpiryInSecs: refreshTokenExpiryInSecs,
	}
}

func (ts *TokenService) GenerateAccessToken(userID uuid.UUID, role Role) (string, error) {
	return ts.generateToken(
		userID,
		role,
		ts.accessTokenSecret,
		ts.accessTokenExpiryInSecs,
	)
}

func (ts *TokenService) GenerateRefreshToken(userID uuid.UUID, role Role) (string, error) {
	return ts.generateToken(
		userID,
		role,
		ts.refreshTokenSecret,
		ts.refreshTokenExpiryInSecs,
	)
}

func (ts *TokenService) ValidateAccessToken(tokenStr string) (isValid bool, claims *TokenClaims, err error) {
	return ts.validateToken(tokenStr, ts.accessTokenSecret)
}

func (ts *TokenService) ValidateRefreshToken(tokenStr string) (isValid bool, claims *TokenClaims, err error) {
	return ts.validateToken(tokenStr, ts.refreshTokenSecret)
}

func (ts *TokenService) generateToken(
	userID uuid.UUID,
	role Role,
	secret []byte,
	expiryInSecs int64,
) (string, error) {
	now := time.Now()

	claims := &TokenClaims{
		EntityID: userID.String(),
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiryInSecs) * time.Second)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (ts *TokenService) validateToken(tokenStr string, secret []byte) (bool, *TokenClaims, error) {
	claims := new(TokenClaims)

	token, err := jwt.ParseWithClaims(
		tokenStr,
		claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}

			return secret, nil
		},
	)
	if err != nil {
		return false, nil, nil
	}

	return token.Valid, claims, nil
}
