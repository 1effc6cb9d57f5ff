package repository

import "errors"

// Sentinel errors for record store operations.
var (
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyExists   = errors.New("record already exists")
	ErrConditionFailed = errors.New("condition not met")
	ErrUnknownTable    = errors.New("unknown table")
	ErrInvalidKey      = errors.New("invalid key")
	ErrEncode          = errors.New("attribute encoding failed")
	ErrDecode          = errors.New("attribute decoding failed")
	ErrBackend         = errors.New("store backend failure")
)
