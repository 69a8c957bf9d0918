package render

import "errors"

// Sentinel kinds for rendering errors.
var (
	ErrEncodeFigure = errors.New("encode figure failed")
	ErrRenderPage   = errors.New("render page failed")
	ErrWriteFile    = errors.New("write export failed")
)
