package service

import "errors"

// Sentinel kinds for invalid dashboard input.
var (
	ErrInvalidPeriod = errors.New("invalid period")
	ErrUnknownQuery  = errors.New("unknown query")
)
