// Package auth issues and verifies session tokens and checks passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "achievehub"

// Claims carried by a session token.
type Claims struct {
	Role      string `json:"role"`
	StudentID string `json:"studentId,omitempty"`
	jwt.RegisteredClaims
}

// Option applies a configuration option to the TokenIssuer.
type Option func(*TokenIssuer)

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(t *TokenIssuer) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *TokenIssuer) {
		if now != nil {
			t.now = now
		}
	}
}

// TokenIssuer signs HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. The secret must not be empty.
func NewTokenIssuer(secret string, opts ...Option) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	t := &TokenIssuer{secret: []byte(secret), ttl: 12 * time.Hour, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue signs a token for userID and returns it with its expiry.
func (t *TokenIssuer) Issue(userID, role, studentID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := Claims{
		Role:      role,
		StudentID: studentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies signature, algorithm, issuer and expiry.
func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	// Expiry is checked against the issuer clock below.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || !claims.VerifyIssuer(issuer, true) {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(t.now(), true) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// CheckPassword compares password with a bcrypt hash.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrBadCredentials
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrBadCredentials
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadCredentials, err)
	}
	return nil
}
