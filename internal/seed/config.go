// Package seed fills the tennis schema with synthetic demo data.
package seed

import (
	"errors"
	"fmt"
	"time"
)

// Limits for generated data.
const (
	MaxCompetitors = 1000
	MaxVenues      = 1000
)

// ErrInvalidConfig is returned for out-of-range seeding parameters.
var ErrInvalidConfig = errors.New("invalid seed config")

// Config holds configuration for a seeding run.
type Config struct {
	Competitors int  // Number of ranked competitors
	Venues      int  // Number of venues
	Complexes   int  // Number of complexes the venues are spread over
	Reset       bool // Drop and recreate the tables first
}

// Validate checks the counts.
func (c Config) Validate() error {
	switch {
	case c.Competitors < 1 || c.Competitors > MaxCompetitors:
		return fmt.Errorf("%w: competitors must be in 1..%d, got %d", ErrInvalidConfig, MaxCompetitors, c.Competitors)
	case c.Venues < 0 || c.Venues > MaxVenues:
		return fmt.Errorf("%w: venues must be in 0..%d, got %d", ErrInvalidConfig, MaxVenues, c.Venues)
	case c.Venues > 0 && c.Complexes < 1:
		return fmt.Errorf("%w: venues need at least one complex", ErrInvalidConfig)
	case c.Complexes > c.Venues && c.Venues > 0:
		return fmt.Errorf("%w: more complexes (%d) than venues (%d)", ErrInvalidConfig, c.Complexes, c.Venues)
	}
	return nil
}

// Stats holds the outcome of a seeding run.
type Stats struct {
	Competitors int
	Rankings    int
	Complexes   int
	Venues      int
	StartTime   time.Time
	Duration    time.Duration
}
