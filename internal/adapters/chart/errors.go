package chart

import "errors"

// Sentinel kinds for chart errors.
var (
	ErrUnknownCountry = errors.New("country has no records")
	ErrDraw           = errors.New("draw chart failed")
)
