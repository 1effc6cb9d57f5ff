package lambda

import "errors"

// Sentinel errors for event translation.
var (
	ErrDecodeBody = errors.New("invalid base64 body")
	ErrBadEvent   = errors.New("invalid proxy event")
)
