// Package venues decodes venue and complex rows.
package venues

import (
	"errors"
	"fmt"

	"github.com/okian/courtview/internal/domain/table"
)

// ErrMissingColumn is returned when the result set lacks a venue column.
var ErrMissingColumn = errors.New("missing venue column")

// Record is one venue joined with its complex.
type Record struct {
	VenueID     string `json:"venue_id"`
	VenueName   string `json:"venue_name"`
	CityName    string `json:"city_name"`
	CountryName string `json:"country_name"`
	CountryCode string `json:"country_code"`
	Timezone    string `json:"timezone"`
	ComplexName string `json:"complex_name"`
}

var columns = []string{"venue_id", "venue_name", "city_name", "country_name", "country_code", "timezone", "complex_name"}

// FromTable decodes the venues query result in row order.
func FromTable(t table.Table) ([]Record, error) {
	if t.IsEmpty() {
		return []Record{}, nil
	}
	idx := make([]int, len(columns))
	for i, name := range columns {
		idx[i] = t.Index(name)
		if idx[i] < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	out := make([]Record, 0, t.Len())
	for _, row := range t.Rows {
		get := func(i int) string {
			if idx[i] >= len(row) {
				return ""
			}
			return table.AsString(row[idx[i]])
		}
		out = append(out, Record{
			VenueID:     get(0),
			VenueName:   get(1),
			CityName:    get(2),
			CountryName: get(3),
			CountryCode: get(4),
			Timezone:    get(5),
			ComplexName: get(6),
		})
	}
	return out, nil
}
