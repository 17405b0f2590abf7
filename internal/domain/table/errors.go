package table

import "errors"

// Sentinel kinds for table errors.
var (
	ErrShape   = errors.New("malformed table")
	ErrConvert = errors.New("cannot convert value")
)
