package reshape

import "errors"

// Sentinel kinds for reshape errors.
var (
	ErrUnknownMonthOrder = errors.New("unknown month order")
)
