package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medchain/internal/domain"
	"medchain/internal/domain/models"
)

func newVerifier(t *testing.T) (JWTVerifier, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := NewStaticVerifier(func(*jwt.Token) (interface{}, error) { return pub, nil }, logger)
	return v, priv
}

func sign(t *testing.T, key interface{}, method jwt.SigningMethod, claims *models.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func clinician(role string, exp time.Time) *models.Claims {
	return &models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "dr-house",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: "house@example.org",
		Role:  role,
	}
}

func TestVerifyToken(t *testing.T) {
	v, key := newVerifier(t)
	token := sign(t, key, jwt.SigningMethodEdDSA, clinician(RoleAuthenticated, time.Now().Add(time.Hour)))

	claims, err := v.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "dr-house", claims.GetUserID())
	assert.Equal(t, "house@example.org", claims.Email)
}

func TestVerifyToken_Rejects(t *testing.T) {
	v, key := newVerifier(t)
	_, otherKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	noSubject := clinician(RoleAuthenticated, time.Now().Add(time.Hour))
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{"expired", sign(t, key, jwt.SigningMethodEdDSA, clinician(RoleAuthenticated, time.Now().Add(-time.Hour)))},
		{"anonymous role", sign(t, key, jwt.SigningMethodEdDSA, clinician("anon", time.Now().Add(time.Hour)))},
		{"missing subject", sign(t, key, jwt.SigningMethodEdDSA, noSubject)},
		{"wrong key", sign(t, otherKey, jwt.SigningMethodEdDSA, clinician(RoleAuthenticated, time.Now().Add(time.Hour)))},
		{"symmetric algorithm", sign(t, []byte("secret"), jwt.SigningMethodHS256, clinician(RoleAuthenticated, time.Now().Add(time.Hour)))},
		{"garbage", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnauthorized))
		})
	}
}
