package figure

import "errors"

// ErrUnknownColorScale is returned for a palette name with no known stops.
var ErrUnknownColorScale = errors.New("unknown color scale")
