package upload

import "errors"

// Sentinel errors for uploads.
var (
	ErrMissingFile     = errors.New("fileName or fileType is required")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrPresign         = errors.New("presign failed")
)
