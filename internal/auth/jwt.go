// Package auth implements the admin gate: passphrase verification and the
// session token that marks a browser as admin-authenticated.
//
// THIS IS NOT A SECURITY BOUNDARY. The admin dashboard is gated behind a
// shared passphrase with a well-known default — the gate exists to keep
// casual visitors out of the stats tab, nothing more. We still do the
// mechanics properly (bcrypt for the passphrase, signed short-lived JWT in
// an HttpOnly cookie) because doing them improperly is the same amount of
// code.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// adminSubject is the only subject these tokens ever carry — there is a
// single admin role, not admin accounts.
const adminSubject = "admin"

// sessionTTL is how long an admin session lasts before the passphrase is
// asked for again.
const sessionTTL = time.Hour

// TokenService creates and validates admin session tokens.
//
// It holds the HMAC secret used to sign and verify. The same secret must
// be used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. jwt.RegisteredClaims carries the standard
// fields (Subject, ExpiresAt, IssuedAt, ID).
type claims struct {
	jwt.RegisteredClaims
}

// GenerateAdmin creates and signs a new admin session token.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, fine for a
// single-server deployment. The jti (uuid) makes every issued token
// distinct even within the same second.
func (s *TokenService) GenerateAdmin() (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminSubject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
			Issuer:    "quote-studio",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// ValidateAdmin parses and verifies a session token string.
//
// The jwt library checks the signature, expiry, and issuer; pinning the
// valid methods to HS256 prevents algorithm-confusion tokens (e.g. "none")
// from ever being accepted.
func (s *TokenService) ValidateAdmin(tokenStr string) error {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("quote-studio"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return errors.New("auth: token expired")
		}
		return fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return errors.New("auth: invalid token claims")
	}
	if c.Subject != adminSubject {
		return errors.New("auth: token is not an admin session")
	}

	return nil
}
