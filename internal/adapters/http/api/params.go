package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/courtview/internal/domain/rankings"
)

// intParam reads an optional integer query parameter.
func intParam(q url.Values, key string) (int, bool, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return n, true, nil
}

// rangeParam reads low and high. A missing bound takes its default, or the
// slider limit when the default would cross the given bound. When both are
// missing it returns nil so the service applies its own default.
func rangeParam(q url.Values, def rankings.Range) (*rankings.Range, error) {
	low, hasLow, err := intParam(q, "low")
	if err != nil {
		return nil, err
	}
	high, hasHigh, err := intParam(q, "high")
	if err != nil {
		return nil, err
	}
	if !hasLow && !hasHigh {
		return nil, nil
	}
	r := def
	if hasLow {
		r.Low = low
		if !hasHigh && r.High < low {
			r.High = rankings.MaxRank
		}
	}
	if hasHigh {
		r.High = high
		if !hasLow && r.Low > high {
			r.Low = rankings.MinRank
		}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
