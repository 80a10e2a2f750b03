package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutoring-admin-api/internal/models"
	appErrors "github.com/noah-isme/tutoring-admin-api/pkg/errors"
)

const testJWTSecret = "super-secret"

func signTestToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(role models.UserRole) models.JWTClaims {
	now := time.Now()
	return models.JWTClaims{
		Email:       "teacher@example.com",
		Role:        "authenticated",
		AppMetadata: models.AppMetadata{Role: role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc := NewAuthService(zap.NewNop(), AuthConfig{Secret: testJWTSecret, Audience: "authenticated"})

	claims, err := svc.ValidateToken(signTestToken(t, testJWTSecret, validClaims(models.RoleTeacher)))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, models.RoleTeacher, claims.AppRole())
}

func TestAuthServiceValidateTokenRejects(t *testing.T) {
	svc := NewAuthService(zap.NewNop(), AuthConfig{Secret: testJWTSecret, Audience: "authenticated"})

	expired := validClaims(models.RoleAdmin)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongAudience := validClaims(models.RoleAdmin)
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	cases := map[string]struct {
		token string
		code  *appErrors.Error
	}{
		"garbage":        {token: "not-a-jwt", code: appErrors.ErrUnauthorized},
		"wrong secret":   {token: signTestToken(t, "other", validClaims(models.RoleAdmin)), code: appErrors.ErrUnauthorized},
		"expired":        {token: signTestToken(t, testJWTSecret, expired), code: appErrors.ErrUnauthorized},
		"wrong audience": {token: signTestToken(t, testJWTSecret, wrongAudience), code: appErrors.ErrUnauthorized},
		"no role":        {token: signTestToken(t, testJWTSecret, validClaims("")), code: appErrors.ErrForbidden},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(tc.token)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, tc.code))
		})
	}
}
