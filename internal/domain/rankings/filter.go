package rankings

import "fmt"

// Slider bounds for rank ranges.
const (
	MinRank = 1
	MaxRank = 100
)

// Range is an inclusive rank interval.
type Range struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// Validate enforces MinRank <= Low <= High <= MaxRank.
func (r Range) Validate() error {
	if r.Low < MinRank || r.High > MaxRank || r.Low > r.High {
		return fmt.Errorf("%w: %d..%d (want %d <= low <= high <= %d)", ErrInvalidRange, r.Low, r.High, MinRank, MaxRank)
	}
	return nil
}

// Contains reports whether rank lies inside the range.
func (r Range) Contains(rank int) bool {
	return r.Low <= rank && rank <= r.High
}

// FilterByRankRange keeps the records with Low <= Rank <= High, in order.
// The input is never modified.
func FilterByRankRange(t Table, r Range) Table {
	out := make(Table, 0, len(t))
	for _, rec := range t {
		if r.Contains(rec.Rank) {
			out = append(out, rec)
		}
	}
	return out
}
