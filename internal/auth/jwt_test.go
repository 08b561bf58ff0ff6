package auth_test

import (
	"testing"
	"time"

	"galaxy-server/internal/auth"
	"galaxy-server/internal/shared/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = config.AuthConfig{
	JWTSecret:       "0123456789abcdef0123456789abcdef",
	TokenExpiration: time.Hour,
}

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := auth.GenerateAdminToken("ops", testAuth)
	require.NoError(t, err)

	claims, err := auth.ValidateJWT(token, testAuth)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, "ops", claims.Subject)
}

func TestValidateRejectsOtherSecret(t *testing.T) {
	token, err := auth.GenerateAdminToken("ops", testAuth)
	require.NoError(t, err)

	other := testAuth
	other.JWTSecret = "fedcba9876543210fedcba9876543210"
	_, err = auth.ValidateJWT(token, other)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	expired := testAuth
	expired.TokenExpiration = -time.Minute

	token, err := auth.GenerateAdminToken("ops", expired)
	require.NoError(t, err)

	_, err = auth.ValidateJWT(token, testAuth)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSecretRequirements(t *testing.T) {
	_, err := auth.GenerateAdminToken("ops", config.AuthConfig{})
	assert.Error(t, err)

	_, err = auth.GenerateAdminToken("ops", config.AuthConfig{JWTSecret: "short"})
	assert.Error(t, err)
}
