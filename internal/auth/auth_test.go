package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SingularityNET-Archive/meetsum-ingest/internal/auth"
	"github.com/SingularityNET-Archive/meetsum-ingest/internal/model"
)

func TestNewJWTManager_RejectsEmptyKey(t *testing.T) {
	_, err := auth.NewJWTManager("", time.Hour)
	require.Error(t, err)
}

func TestJWTIssueAndValidate(t *testing.T) {
	mgr, err := auth.NewJWTManager("test-signing-key", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := mgr.IssueToken(model.RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestIssueToken_RejectsUnknownRole(t *testing.T) {
	mgr, err := auth.NewJWTManager("test-signing-key", time.Hour)
	require.NoError(t, err)

	_, _, err = mgr.IssueToken(model.Role("superuser"))
	require.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	mgr, err := auth.NewJWTManager("test-signing-key", time.Hour)
	require.NoError(t, err)

	token, _, err := mgr.IssueToken(model.RoleReadOnly)
	require.NoError(t, err)

	other, err := auth.NewJWTManager("a-different-key", time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	mgr, err := auth.NewJWTManager("test-signing-key", -time.Hour)
	require.NoError(t, err)

	token, _, err := mgr.IssueToken(model.RoleReadOnly)
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	require.Error(t, err)
}

// forgeToken signs a JWT with an arbitrary secret, for testing rejection of
// tokens this manager never issued.
func forgeToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	mgr, err := auth.NewJWTManager("test-signing-key", time.Hour)
	require.NoError(t, err)

	now := time.Now().UTC()
	token := forgeToken(t, "test-signing-key", &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "not-meetsum-ingest",
			Audience:  jwt.ClaimStrings{"meetsum-ingest"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Role: model.RoleAdmin,
	})

	_, err = mgr.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_UnknownRole(t *testing.T) {
	mgr, err := auth.NewJWTManager("test-signing-key", time.Hour)
	require.NoError(t, err)

	now := time.Now().UTC()
	token := forgeToken(t, "test-signing-key", &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "meetsum-ingest",
			Audience:  jwt.ClaimStrings{"meetsum-ingest"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Role: model.Role("superuser"),
	})

	_, err = mgr.ValidateToken(token)
	require.Error(t, err)
}
