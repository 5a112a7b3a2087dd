package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssueAndValidate(t *testing.T) {
	m := NewTokenManager("test-secret", 1)

	token, err := m.Issue("u-1", "ali@propertyflow.local", "coordinator", "Ali bin Abu")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "ali@propertyflow.local", claims.Email)
	assert.Equal(t, "coordinator", claims.Position)
	assert.Equal(t, "Ali bin Abu", claims.FullName)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 1)
	verifier := NewTokenManager("secret-b", 1)

	token, err := issuer.Issue("u-1", "ali@propertyflow.local", "coordinator", "Ali")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestTokenRejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", 1)

	// 手工构造已过期的 token
	now := time.Now()
	claims := &Claims{
		Email:    "ali@propertyflow.local",
		Position: "coordinator",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Validate(expired)
	assert.Error(t, err)
}

func TestTokenRejectsMissingSubject(t *testing.T) {
	m := NewTokenManager("test-secret", 1)

	now := time.Now()
	claims := &Claims{
		Email: "ali@propertyflow.local",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", 1)
	_, err := m.Validate("not-a-token")
	assert.Error(t, err)
}
