// Package auth provides JWT-based authentication for the read API.
//
// The domain has no Agent entity and no multi-tenancy (spec.md Non-goals):
// a caller is identified by nothing more than the role tag on its token,
// admin or read_only (spec.md §8). Tokens are signed with a single shared
// HMAC secret (JWT_SIGNING_KEY) rather than a key pair, since this service
// is both the sole issuer and the sole verifier.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
)

// Claims extends jwt.RegisteredClaims with the role tag that gates
// mutation (spec.md §8).
type Claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// JWTManager handles JWT creation and validation using HMAC-SHA256.
type JWTManager struct {
	secret     []byte
	expiration time.Duration
}

// NewJWTManager creates a JWTManager from the shared signing secret.
func NewJWTManager(signingKey string, expiration time.Duration) (*JWTManager, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("auth: signing key must not be empty")
	}
	return &JWTManager{secret: []byte(signingKey), expiration: expiration}, nil
}

// IssueToken creates a signed JWT asserting role.
func (m *JWTManager) IssueToken(role model.Role) (string, time.Time, error) {
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("auth: unknown role %q", role)
	}

	now := time.Now().UTC()
	exp := now.Add(m.expiration)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "meetsum-ingest",
			Audience:  jwt.ClaimStrings{"meetsum-ingest"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.New().String(),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, exp, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (m *JWTManager) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithAudience("meetsum-ingest"),
		jwt.WithIssuer("meetsum-ingest"),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: validate token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("auth: unknown role in token: %q", claims.Role)
	}

	return claims, nil
}
