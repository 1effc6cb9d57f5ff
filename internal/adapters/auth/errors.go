package auth

import "errors"

// Sentinel errors for authentication.
var (
	ErrNoSecret       = errors.New("token secret is not configured")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrBadCredentials = errors.New("invalid credentials")
)
