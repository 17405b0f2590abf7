package cache

import "errors"

var (
	// ErrStore wraps failures of the backing store.
	ErrStore = errors.New("cache store error")
	// ErrCorrupt marks a stored entry that could not be decoded.
	ErrCorrupt = errors.New("corrupt cache entry")
)
