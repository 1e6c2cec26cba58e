package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(
		"storefront-test-secret-key-0123456789",
		15*time.Minute,
		7*24*time.Hour,
	)
}

// ============================================================
// Access tokens
// ============================================================

func TestJWTService_AccessToken_RoundTrip(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateAccessToken("shopper-123", "shopper@example.com", "customer")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "shopper-123", claims.ShopperID)
	assert.Equal(t, "shopper@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, "shopper-123", claims.Subject)
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	service := NewJWTService("storefront-test-secret", 1*time.Millisecond, 7*24*time.Hour)

	token, _, err := service.GenerateAccessToken("shopper-123", "shopper@example.com", "customer")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	claims, err := service.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_Garbage(t *testing.T) {
	service := newTestJWTService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"truncated JWT", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_ValidateAccessToken_WrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-key-one", 15*time.Minute, 7*24*time.Hour)
	verifier := NewJWTService("secret-key-two", 15*time.Minute, 7*24*time.Hour)

	token, _, err := issuer.GenerateAccessToken("shopper-123", "shopper@example.com", "customer")
	require.NoError(t, err)

	claims, err := verifier.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	service := newTestJWTService()

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		ShopperID: "shopper-123",
		Email:     "shopper@example.com",
		Role:      "admin",
	})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := service.ValidateAccessToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

// ============================================================
// Refresh tokens
// ============================================================

func TestJWTService_RefreshToken_RoundTrip(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateRefreshToken("shopper-456")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now().Add(6*24*time.Hour)))

	shopperID, err := service.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "shopper-456", shopperID)
}

func TestJWTService_ValidateRefreshToken_Expired(t *testing.T) {
	service := NewJWTService("storefront-test-secret", 15*time.Minute, 1*time.Millisecond)

	token, _, err := service.GenerateRefreshToken("shopper-123")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	shopperID, err := service.ValidateRefreshToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Empty(t, shopperID)
}

func TestJWTService_ValidateRefreshToken_Invalid(t *testing.T) {
	service := newTestJWTService()

	shopperID, err := service.ValidateRefreshToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, shopperID)
}

func TestJWTService_AccessAndRefreshTokensDiffer(t *testing.T) {
	service := newTestJWTService()

	accessToken, _, err := service.GenerateAccessToken("shopper-123", "shopper@example.com", "customer")
	require.NoError(t, err)

	refreshToken, _, err := service.GenerateRefreshToken("shopper-123")
	require.NoError(t, err)

	assert.NotEqual(t, accessToken, refreshToken)
}

func TestJWTService_Expiries(t *testing.T) {
	service := newTestJWTService()
	assert.Equal(t, 15*time.Minute, service.GetAccessTokenExpiry())
	assert.Equal(t, 7*24*time.Hour, service.GetRefreshTokenExpiry())
}
