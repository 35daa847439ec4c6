// Package auth implements the login exchange for the query surface:
// an admin password is traded for a signed bearer token.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"mail-webhook-relay/internal/config"
)

var (
	// ErrInvalidCredentials is returned when the password is wrong or
	// no password is configured at all.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for tokens that fail validation.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims are the JWT claims carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// Manager verifies the admin password and issues session tokens.
type Manager struct {
	cfg config.AuthConfig
}

// NewManager creates an auth manager from the configured credentials.
func NewManager(cfg config.AuthConfig) *Manager {
	return &Manager{cfg: cfg}
}

// CheckPassword verifies the supplied password. A configured bcrypt
// hash takes precedence; the plaintext setting is a fallback for
// simple deployments.
func (m *Manager) CheckPassword(password string) error {
	if m.cfg.AdminPasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(m.cfg.AdminPasswordHash), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
		return nil
	}

	if m.cfg.AdminPassword != "" {
		if subtle.ConstantTimeCompare([]byte(m.cfg.AdminPassword), []byte(password)) != 1 {
			return ErrInvalidCredentials
		}
		return nil
	}

	// No password configured: the login exchange is closed.
	return ErrInvalidCredentials
}

// IssueToken signs a session token with the configured TTL. It returns
// the token and its lifetime in seconds.
func (m *Manager) IssueToken() (string, int64, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mail-webhook-relay",
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.JWTSecret))
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, int64(m.cfg.TokenTTL.Seconds()), nil
}

// ValidateToken parses and validates a session token.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
