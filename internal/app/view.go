package service

import (
	"fmt"
	"slices"
	"sync"

	"github.com/okian/courtview/internal/domain/charts"
	"github.com/okian/courtview/internal/domain/rankings"
	"github.com/okian/courtview/internal/domain/types"
	"github.com/okian/courtview/internal/domain/venues"
	"github.com/okian/courtview/pkg/metrics"
)

// Section names used in empty-result metrics.
const (
	SectionRankings           = "rankings"
	SectionRankDistribution   = "rank_distribution"
	SectionPointsDistribution = "points_distribution"
	SectionCountries          = "countries"
	SectionScatter            = "scatter"
	SectionVenues             = "venues"
	SectionSearch             = "search"
)

// Source is a loaded dataset plus the failure that left it empty, if any.
type Source[T any] struct {
	Data T
	Err  error
}

// Recomputes counts how often each derived stage ran.
type Recomputes struct {
	Filter int `json:"filter"`
	Search int `json:"search"`
}

// View holds the loaded tables and the state derived from the current
// filters. Each setter recomputes only the stages that depend on what it
// changed: a rank range change reruns filter, summary and search; a search
// change reruns search only; a period change reruns nothing.
type View struct {
	mu sync.Mutex

	all    Source[rankings.Table]
	venues Source[[]venues.Record]
	years  []int
	bins   int

	period types.Period
	rng    rankings.Range
	needle string

	filtered  rankings.Table
	summary   []rankings.CountrySummary
	matches   rankings.Table
	performed bool

	recomputes Recomputes
}

// NewView derives the initial state for rng over the loaded data. years is
// the closed set of selectable years; the first one is selected.
func NewView(all Source[rankings.Table], vs Source[[]venues.Record], years []int, bins int, rng rankings.Range) (*View, error) {
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: no selectable years", ErrInvalidPeriod)
	}
	if all.Data == nil {
		all.Data = rankings.Table{}
	}
	if vs.Data == nil {
		vs.Data = []venues.Record{}
	}
	v := &View{
		all:    all,
		venues: vs,
		years:  slices.Clone(years),
		bins:   bins,
		period: types.Period{Year: years[0], Week: 1},
	}
	if err := v.SetRankRange(rng); err != nil {
		return nil, err
	}
	return v, nil
}

// SetRankRange narrows the rankings and reruns every dependent stage.
func (v *View) SetRankRange(r rankings.Range) error {
	if err := r.Validate(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	v.rng = r
	v.filtered = rankings.FilterByRankRange(v.all.Data, r)
	v.summary = rankings.SummarizeByCountry(v.filtered)
	v.recomputes.Filter++
	v.search()
	return nil
}

// SetSearch changes the competitor needle and reruns the search only.
func (v *View) SetSearch(needle string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.needle = needle
	v.search()
}

// SetPeriod selects a year from the closed set and a week in 1..52. The
// stored rankings carry no period, so derived data is unchanged.
func (v *View) SetPeriod(year, week int) error {
	if !slices.Contains(v.years, year) {
		return fmt.Errorf("%w: year %d not in %v", ErrInvalidPeriod, year, v.years)
	}
	if week < 1 || week > 52 {
		return fmt.Errorf("%w: week %d not in 1..52", ErrInvalidPeriod, week)
	}
	v.mu.Lock()
	v.period = types.Period{Year: year, Week: week}
	v.mu.Unlock()
	return nil
}

// Recomputes reports the stage counters.
func (v *View) Recomputes() Recomputes {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.recomputes
}

func (v *View) search() {
	v.matches, v.performed = rankings.SearchByName(v.filtered, v.needle)
	v.recomputes.Search++
}

// Snapshot renders every section, substituting warnings for empty content.
func (v *View) Snapshot() types.Dashboard {
	v.mu.Lock()
	period, rng := v.period, v.rng
	v.mu.Unlock()

	return types.Dashboard{
		Period:    period,
		Range:     rng,
		Rankings:  v.RankingsSection(),
		Countries: v.CountriesSection(),
		Charts:    v.ChartsSection(),
		Venues:    v.VenuesSection(),
		Search:    v.SearchResult(),
	}
}

// RankingsSection renders the filtered rankings table.
func (v *View) RankingsSection() types.Section[rankings.Table] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return section(v.filtered, len(v.filtered) == 0, SectionRankings, types.WarnNoRankings, errString(v.all.Err))
}

// CountriesSection renders the per-country summary of the filtered rankings.
func (v *View) CountriesSection() types.Section[[]rankings.CountrySummary] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return section(v.summary, len(v.filtered) == 0, SectionCountries, types.WarnNoCountryStats, errString(v.all.Err))
}

// ChartsSection renders the distributions, the country bars and the scatter.
func (v *View) ChartsSection() types.Charts {
	v.mu.Lock()
	defer v.mu.Unlock()

	errMsg := errString(v.all.Err)
	empty := len(v.filtered) == 0
	var c types.Charts
	c.RankDistribution = section(charts.Histogram(charts.Ranks(v.filtered), v.bins), empty,
		SectionRankDistribution, types.WarnNoRankDistribution, errMsg)
	c.PointsDistribution = section(charts.Histogram(charts.Points(v.filtered), v.bins), empty,
		SectionPointsDistribution, types.WarnNoPointsDistribution, errMsg)
	c.Countries = section(charts.CountryBars(v.summary), empty,
		SectionCountries, types.WarnNoCountryStats, errMsg)
	c.Scatter = section(charts.Scatter(v.filtered), empty,
		SectionScatter, types.WarnNoScatter, errMsg)
	return c
}

// VenuesSection renders the venues the view was built with.
func (v *View) VenuesSection() types.Section[[]venues.Record] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return venuesSection(v.venues)
}

// SearchResult renders the competitor search over the filtered rankings.
func (v *View) SearchResult() types.SearchResult {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.performed {
		return types.SearchResult{}
	}
	r := types.SearchResult{Performed: true, Needle: v.needle, Rows: v.matches}
	if len(v.matches) == 0 {
		r.Warning = types.WarnNoCompetitor
		metrics.RecordEmptyResult(SectionSearch)
	}
	return r
}

func venuesSection(vs Source[[]venues.Record]) types.Section[[]venues.Record] {
	data := vs.Data
	if data == nil {
		data = []venues.Record{}
	}
	return section(data, len(data) == 0, SectionVenues, types.WarnNoVenues, errString(vs.Err))
}

func section[T any](data T, empty bool, name, warning, errMsg string) types.Section[T] {
	s := types.Section[T]{Data: data, Error: errMsg}
	if empty {
		s.Warning = warning
		metrics.RecordEmptyResult(name)
	}
	return s
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
