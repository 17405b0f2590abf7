// Package rankings holds competitor ranking records and the pure stages
// that narrow, search and summarize them.
package rankings

import (
	"fmt"

	"github.com/okian/courtview/internal/domain/table"
)

// Column names produced by the rankings query.
const (
	ColRank               = "rank"
	ColMovement           = "movement"
	ColPoints             = "points"
	ColCompetitionsPlayed = "competitions_played"
	ColCompetitorName     = "competitor_name"
	ColCountry            = "country"
	ColAbbreviation       = "abbreviation"
)

var requiredColumns = []string{ColRank, ColPoints, ColCompetitorName, ColCountry}

// Record is one competitor's ranking row.
type Record struct {
	Rank               int     `json:"rank"`
	Movement           int     `json:"movement"`
	Points             float64 `json:"points"`
	CompetitionsPlayed int     `json:"competitions_played"`
	CompetitorName     string  `json:"competitor_name"`
	Country            string  `json:"country"`
	Abbreviation       string  `json:"abbreviation"`

	pointsNull bool
}

// HasPoints reports whether the points cell held a value. A NULL decodes to
// zero and is left out of averages and distributions.
func (r Record) HasPoints() bool { return !r.pointsNull }

// Table is an ordered ranking table in result-set order. Every Rank is
// positive; duplicates are allowed.
type Table []Record

// FromTable decodes a result set into records. Rows whose rank is missing or
// not a positive integer are skipped and counted in dropped. An empty input
// with no columns decodes to an empty Table.
func FromTable(t table.Table) (out Table, dropped int, err error) {
	if t.IsEmpty() {
		return Table{}, 0, nil
	}
	for _, name := range requiredColumns {
		if t.Index(name) < 0 {
			return nil, 0, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	idx := func(name string) int { return t.Index(name) }
	rank, movement, points := idx(ColRank), idx(ColMovement), idx(ColPoints)
	played, name, country, abbr := idx(ColCompetitionsPlayed), idx(ColCompetitorName), idx(ColCountry), idx(ColAbbreviation)

	out = make(Table, 0, t.Len())
	for _, row := range t.Rows {
		r, ok := table.AsInt(cell(row, rank))
		if !ok || r <= 0 {
			dropped++
			continue
		}
		rec := Record{
			Rank:           int(r),
			CompetitorName: table.AsString(cell(row, name)),
			Country:        table.AsString(cell(row, country)),
			Abbreviation:   table.AsString(cell(row, abbr)),
		}
		if m, ok := table.AsInt(cell(row, movement)); ok {
			rec.Movement = int(m)
		}
		if p, ok := table.AsFloat(cell(row, points)); ok {
			rec.Points = p
		} else {
			rec.pointsNull = true
		}
		if c, ok := table.AsInt(cell(row, played)); ok {
			rec.CompetitionsPlayed = int(c)
		}
		out = append(out, rec)
	}
	return out, dropped, nil
}

func cell(row []any, i int) any {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}
