// Package charts turns ranking tables into plot-ready series. Drawing is left
// to the browser; these functions only shape the data.
package charts

import (
	"math"

	"github.com/okian/courtview/internal/domain/rankings"
)

// Bin is one histogram bucket covering [Lower, Upper). The last bin of a
// histogram also includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram splits values into bins of equal width between their min and max.
// Identical values collapse into a single bin. No values yield nil.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 {
		return nil
	}
	if bins < 1 {
		bins = 1
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// Ranks extracts the rank column as floats.
func Ranks(t rankings.Table) []float64 {
	out := make([]float64, len(t))
	for i, r := range t {
		out[i] = float64(r.Rank)
	}
	return out
}

// Points extracts the points column, skipping NULL points.
func Points(t rankings.Table) []float64 {
	out := make([]float64, 0, len(t))
	for _, r := range t {
		if r.HasPoints() {
			out = append(out, r.Points)
		}
	}
	return out
}

// Bar is one country bar; Value drives the continuous color scale.
type Bar struct {
	Country     string  `json:"country"`
	Competitors int     `json:"competitors"`
	Value       float64 `json:"avg_points"`
}

// BarChart is the competitors-by-country chart colored by average points.
type BarChart struct {
	Bars         []Bar   `json:"bars"`
	MinAvgPoints float64 `json:"min_avg_points"`
	MaxAvgPoints float64 `json:"max_avg_points"`
}

// CountryBars keeps the summary order and reports the color scale bounds.
func CountryBars(summary []rankings.CountrySummary) BarChart {
	chart := BarChart{Bars: make([]Bar, len(summary))}
	for i, s := range summary {
		chart.Bars[i] = Bar{Country: s.Country, Competitors: s.Competitors, Value: s.AvgPoints}
		if i == 0 || s.AvgPoints < chart.MinAvgPoints {
			chart.MinAvgPoints = s.AvgPoints
		}
		if i == 0 || s.AvgPoints > chart.MaxAvgPoints {
			chart.MaxAvgPoints = s.AvgPoints
		}
	}
	return chart
}

// Point is one competitor in the competitions-played vs points scatter.
type Point struct {
	X     int     `json:"competitions_played"`
	Y     float64 `json:"points"`
	Label string  `json:"competitor_name"`
}

// ScatterSeries holds the points of one country.
type ScatterSeries struct {
	Country string  `json:"country"`
	Points  []Point `json:"points"`
}

// Scatter groups records into one series per country, in first-seen order.
func Scatter(t rankings.Table) []ScatterSeries {
	out := make([]ScatterSeries, 0)
	pos := make(map[string]int)
	for _, r := range t {
		i, ok := pos[r.Country]
		if !ok {
			i = len(out)
			pos[r.Country] = i
			out = append(out, ScatterSeries{Country: r.Country})
		}
		out[i].Points = append(out[i].Points, Point{X: r.CompetitionsPlayed, Y: r.Points, Label: r.CompetitorName})
	}
	return out
}
