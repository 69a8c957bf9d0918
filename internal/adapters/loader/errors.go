package loader

import "errors"

// Sentinel kinds for workbook loading errors.
var (
	ErrOpenWorkbook      = errors.New("open workbook failed")
	ErrMissingSheet      = errors.New("sheet not found")
	ErrReadSheet         = errors.New("read sheet failed")
	ErrEmptySheet        = errors.New("empty sheet")
	ErrMissingDateColumn = errors.New("date column not found")
	ErrDuplicateColumn   = errors.New("duplicate country column")
	ErrMalformedDate     = errors.New("malformed date")
	ErrDuplicateDate     = errors.New("duplicate date row")
	ErrMalformedValue    = errors.New("malformed value")
	ErrBlankDate         = errors.New("blank date")
	ErrUnknownDateFormat = errors.New("unrecognised date format")
)
