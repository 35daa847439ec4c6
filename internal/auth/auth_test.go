package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mail-webhook-relay/internal/config"
)

func TestCheckPasswordPlain(t *testing.T) {
	m := NewManager(config.AuthConfig{AdminPassword: "hunter2"})

	assert.NoError(t, m.CheckPassword("hunter2"))
	assert.ErrorIs(t, m.CheckPassword("wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, m.CheckPassword(""), ErrInvalidCredentials)
}

func TestCheckPasswordBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	m := NewManager(config.AuthConfig{AdminPasswordHash: string(hash)})
	assert.NoError(t, m.CheckPassword("hunter2"))
	assert.ErrorIs(t, m.CheckPassword("wrong"), ErrInvalidCredentials)
}

func TestCheckPasswordHashTakesPrecedence(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed"), bcrypt.MinCost)
	require.NoError(t, err)

	m := NewManager(config.AuthConfig{
		AdminPassword:     "plain",
		AdminPasswordHash: string(hash),
	})
	assert.NoError(t, m.CheckPassword("hashed"))
	assert.ErrorIs(t, m.CheckPassword("plain"), ErrInvalidCredentials)
}

func TestCheckPasswordUnconfigured(t *testing.T) {
	m := NewManager(config.AuthConfig{})
	assert.ErrorIs(t, m.CheckPassword("anything"), ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager(config.AuthConfig{
		AdminPassword: "secret",
		JWTSecret:     "signing-key",
		TokenTTL:      time.Hour,
	})

	token, expiresIn, err := m.IssueToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(3600), expiresIn)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
}

func TestValidateTokenRejectsBadInput(t *testing.T) {
	m := NewManager(config.AuthConfig{JWTSecret: "signing-key", TokenTTL: time.Hour})

	_, err := m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with a different secret fails validation.
	other := NewManager(config.AuthConfig{JWTSecret: "other-key", TokenTTL: time.Hour})
	token, _, err := other.IssueToken()
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	m := NewManager(config.AuthConfig{JWTSecret: "signing-key", TokenTTL: -time.Minute})

	token, _, err := m.IssueToken()
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
