package rankings

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrInvalidRange  = errors.New("invalid rank range")
	ErrMissingColumn = errors.New("missing ranking column")
)
