package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHasRole(t *testing.T) {
	admin := &Principal{UserID: uuid.New(), Role: RoleAdmin}
	customer := &Principal{UserID: uuid.New(), Role: RoleCustomer}

	assert.True(t, HasRole(admin, RoleAdmin))
	assert.True(t, HasRole(customer, RoleAdmin, RoleCustomer))
	assert.False(t, HasRole(customer, RoleAdmin))
	assert.False(t, HasRole(nil, RoleAdmin, RoleCustomer))
	assert.False(t, HasRole(admin))
}

func TestTokenServiceRoundTrip(t *testing.T) {
	ts := NewTokenService("access-secret", "refresh-secret", 60, 120)
	userID := uuid.New()

	accessToken, err := ts.GenerateAccessToken(userID, RoleCustomer)
	assert.NoError(t, err)

	isValid, claims, err := ts.ValidateAccessToken(accessToken)
	assert.NoError(t, err)
	assert.True(t, isValid)
	assert.Equal(t, userID.String(), claims.EntityID)
	assert.Equal(t, string(RoleCustomer), claims.Role)

	// an access token must not validate against the refresh secret
	isValid, _, err = ts.ValidateRefreshToken(accessToken)
	assert.NoError(t, err)
	assert.False(t, isValid)
}
