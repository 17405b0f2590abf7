package datasource

import (
	"errors"
	"fmt"
)

// Sentinel kinds for data source failures. Every *Error matches ErrDataSource
// plus one of the specific kinds.
var (
	ErrDataSource = errors.New("data source error")
	ErrConnect    = errors.New("connect failed")
	ErrQuery      = errors.New("query failed")
	ErrTimeout    = errors.New("query timed out")
)

// Error is a recoverable connection or query failure.
type Error struct {
	Op    string
	Query string
	Kind  error
	Err   error
}

func (e *Error) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Query, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes ErrDataSource, the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	return []error{ErrDataSource, e.Kind, e.Err}
}

// KindName returns a short label for metrics.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrConnect):
		return "connect"
	case errors.Is(err, ErrQuery):
		return "query"
	default:
		return "unknown"
	}
}
