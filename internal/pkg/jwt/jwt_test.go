package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var principal = user.Principal{UserID: "emp-1", Email: "budi@cmlabs.co", Role: user.RoleEmployee, CompanyKey: "cm labs"}

func newService(t *testing.T) Service {
	t.Helper()
	svc, err := NewJWTService("test-secret", "1h")
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RejectsBadLifetime(t *testing.T) {
	_, err := NewJWTService("secret", "forever")
	assert.Error(t, err)
}

func TestAccessToken(t *testing.T) {
	svc := newService(t)

	token, expiresAt, err := svc.GenerateAccessToken(principal)
	require.NoError(t, err)
	assert.NotZero(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, claims["type"])

	got, ok := PrincipalFromClaims(claims)
	require.True(t, ok)
	assert.Equal(t, principal, got)

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestSSEToken(t *testing.T) {
	svc := newService(t)

	token, expiresIn, err := svc.GenerateSSEToken(principal)
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	got, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, principal, got)

	_, err = svc.ValidateSSEToken("not-a-token")
	assert.Error(t, err)
}

func TestRevocation(t *testing.T) {
	svc := newService(t)
	token, _, err := svc.GenerateAccessToken(principal)
	require.NoError(t, err)

	assert.False(t, svc.IsTokenRevoked(token))
	svc.RevokeToken(token)
	assert.True(t, svc.IsTokenRevoked(token))

	assert.Zero(t, svc.PruneRevoked())
	assert.True(t, svc.IsTokenRevoked(token))
}

func TestPrincipalFromClaims(t *testing.T) {
	_, ok := PrincipalFromClaims(map[string]interface{}{"role": "employee"})
	assert.False(t, ok)

	_, ok = PrincipalFromClaims(map[string]interface{}{"user_id": "u1", "role": "owner"})
	assert.False(t, ok)

	p, ok := PrincipalFromClaims(map[string]interface{}{"user_id": "u1", "role": "admin"})
	require.True(t, ok)
	assert.Equal(t, user.RoleAdministrator, p.Role)
}
