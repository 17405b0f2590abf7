// Package types contains the dashboard payloads shared by the service and the API.
package types

import (
	"github.com/okian/courtview/internal/domain/charts"
	"github.com/okian/courtview/internal/domain/rankings"
	"github.com/okian/courtview/internal/domain/venues"
)

// Empty-result warnings shown in place of a section's content.
const (
	WarnNoRankings           = "No rankings data available."
	WarnNoRankDistribution   = "No data available for rankings distribution."
	WarnNoPointsDistribution = "No data available for points distribution."
	WarnNoCountryStats       = "No data available for country-wise stats."
	WarnNoScatter            = "No data available for competitions played vs points."
	WarnNoVenues             = "No venues data available."
	WarnNoCompetitor         = "No data found for the specified competitor."
)

// Section is one dashboard output. When there is nothing to show, Warning
// holds the message to display instead. Error carries a data source failure.
type Section[T any] struct {
	Data    T      `json:"data"`
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Empty reports whether the section should render its warning.
func (s Section[T]) Empty() bool { return s.Warning != "" }

// SearchResult is the outcome of a competitor search. Performed is false
// when no needle was given; Rows is then omitted.
type SearchResult struct {
	Performed bool           `json:"performed"`
	Needle    string         `json:"needle,omitempty"`
	Rows      rankings.Table `json:"rows,omitempty"`
	Warning   string         `json:"warning,omitempty"`
}

// Period is the selected year and week.
type Period struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// Charts groups the four visualizations over the filtered rankings.
type Charts struct {
	RankDistribution   Section[[]charts.Bin]           `json:"rankDistribution"`
	PointsDistribution Section[[]charts.Bin]           `json:"pointsDistribution"`
	Countries          Section[charts.BarChart]        `json:"countries"`
	Scatter            Section[[]charts.ScatterSeries] `json:"scatter"`
}

// Dashboard is the complete page state for one set of filters.
type Dashboard struct {
	Period    Period                             `json:"period"`
	Range     rankings.Range                     `json:"range"`
	Rankings  Section[rankings.Table]            `json:"rankings"`
	Countries Section[[]rankings.CountrySummary] `json:"countries"`
	Charts    Charts                             `json:"charts"`
	Venues    Section[[]venues.Record]           `json:"venues"`
	Search    SearchResult                       `json:"search"`
}

// Filters describes the selectable filter values and their defaults.
type Filters struct {
	Years        []int          `json:"years"`
	Weeks        []int          `json:"weeks"`
	MinRank      int            `json:"minRank"`
	MaxRank      int            `json:"maxRank"`
	DefaultRange rankings.Range `json:"defaultRange"`
	Default      Period         `json:"default"`
}
