// Package auth issues and validates observer session tokens for the admin
// dashboard. Ordinary members need no authentication: they are names inside a
// group document, trusted as sent. Observer access is different because it
// bypasses the visibility filter, so it is gated behind a password exchange
// for a short-lived token.
//
// Sessions are stateless JWTs handed to an injected Manager rather than a
// process-global map, so services remain testable without a running process.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingToken       = errors.New("authorization token required")
	ErrInvalidCredentials = errors.New("invalid password")
)

// Claims are the JWT claims carried by an observer session token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager handles the admin password check and observer token lifecycle.
type Manager struct {
	passwordHash []byte
	secretKey    []byte
	tokenTTL     time.Duration
}

// NewManager creates an auth manager.
// passwordHash is a bcrypt hash of the admin password; secretKey should be a
// strong random string (e.g. 32 bytes); tokenTTL is how long issued tokens
// remain valid.
func NewManager(passwordHash, secretKey string, tokenTTL time.Duration) *Manager {
	return &Manager{
		passwordHash: []byte(passwordHash),
		secretKey:    []byte(secretKey),
		tokenTTL:     tokenTTL,
	}
}

// HashPassword bcrypt-hashes a plaintext password for configuration.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login verifies the admin password and returns a fresh observer token.
func (m *Manager) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return m.generate()
}

func (m *Manager) generate() (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: "observer",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses and validates an observer token, returning the claims if
// valid.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
