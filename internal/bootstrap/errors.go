package bootstrap

import "errors"

// Sentinel errors for application wiring.
var (
	ErrAWSConfig    = errors.New("load aws config failed")
	ErrUnknownStore = errors.New("unknown store backend")
	ErrTokens       = errors.New("token issuer setup failed")
)
