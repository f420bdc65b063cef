package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "restaurant-test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService()
	branchID := uuid.New()
	input := GenerateTokenInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Username: "ana",
		BranchID: &branchID,
		Roles:    []string{RoleCashier},
	}

	token, expiresAt, err := svc.GenerateToken(input)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	tenantID, err := claims.GetTenantUUID()
	require.NoError(t, err)
	assert.Equal(t, input.TenantID, tenantID)
	userID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, userID)
	assert.Equal(t, branchID.String(), claims.BranchID)
	assert.True(t, claims.HasAnyRole(RoleManager, RoleCashier))
	assert.False(t, claims.HasAnyRole(RoleManager))
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := svc.GenerateToken(GenerateTokenInput{TenantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, err := newTestJWTService().GenerateToken(GenerateTokenInput{TenantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:                "another-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Minute,
		Issuer:                "restaurant-test",
	})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := newTestJWTService().ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_MissingTenant(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "restaurant-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		UserID: uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrMissingTenantID)
}
