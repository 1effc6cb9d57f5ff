package seed

import "errors"

// Sentinel errors for fixture loading.
var (
	ErrDecode          = errors.New("decode fixture failed")
	ErrMissingPassword = errors.New("fixture user has no password")
	ErrWrite           = errors.New("write fixture record failed")
)
