package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"medchain/internal/domain"
	"medchain/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// RoleAuthenticated is the only role allowed to call the record API
const RoleAuthenticated = "authenticated"

// allowedAlgorithms prevents algorithm confusion: only asymmetric signatures
var allowedAlgorithms = []string{"RS256", "ES256", "EdDSA"}

// JWKSVerifier implements JWTVerifier against an identity provider's JWKS endpoint.
type JWKSVerifier struct {
	keyfunc jwt.Keyfunc
	cancel  context.CancelFunc
	logger  *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from jwksURL.
// Keys are cached and refreshed in the background until Close is called.
func NewJWTVerifier(jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{
		keyfunc: jwks.Keyfunc,
		cancel:  cancel,
		logger:  logger,
	}, nil
}

// NewStaticVerifier verifies tokens with a fixed key lookup.
// Used for tests and for deployments that pin a single signing key.
func NewStaticVerifier(keyfunc jwt.Keyfunc, logger *slog.Logger) JWTVerifier {
	return &JWKSVerifier{
		keyfunc: keyfunc,
		cancel:  func() {},
		logger:  logger,
	}
}

// VerifyToken validates a JWT token and extracts clinician claims.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, v.keyfunc,
		jwt.WithValidMethods(allowedAlgorithms),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		v.logger.Debug("token rejected", "error", err)
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, &domain.UnauthorizedError{Message: "token has no subject"}
	}

	// Reject anonymous tokens
	if claims.Role != RoleAuthenticated {
		v.logger.Warn("token has invalid role",
			"role", claims.Role,
			"expected", RoleAuthenticated,
			"user_id", claims.Subject,
		)
		return nil, &domain.UnauthorizedError{Message: "token role not allowed"}
	}

	return claims, nil
}

// Close stops the background JWKS refresh
func (v *JWKSVerifier) Close() error {
	v.cancel()
	v.logger.Info("JWT verifier closed")
	return nil
}
