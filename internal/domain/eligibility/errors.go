package eligibility

import "errors"

// ErrInvalidTime reports an unparseable timestamp.
var ErrInvalidTime = errors.New("invalid timestamp")
