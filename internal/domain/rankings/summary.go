package rankings

import "sort"

// CountrySummary aggregates the records of one country.
type CountrySummary struct {
	Country     string  `json:"country"`
	Competitors int     `json:"Competitors"`
	AvgPoints   float64 `json:"Avg_Points"`
}

// SummarizeByCountry groups records by exact country value and returns one
// row per country, ordered by Competitors descending. Ties keep the order in
// which countries first appear in t. A NULL country groups under "".
// AvgPoints averages the records that have points; it is 0 when none do.
func SummarizeByCountry(t Table) []CountrySummary {
	type acc struct {
		count  int
		scored int
		sum    float64
	}
	order := make([]string, 0)
	groups := make(map[string]*acc)
	for _, rec := range t {
		g, ok := groups[rec.Country]
		if !ok {
			g = &acc{}
			groups[rec.Country] = g
			order = append(order, rec.Country)
		}
		g.count++
		if rec.HasPoints() {
			g.scored++
			g.sum += rec.Points
		}
	}

	out := make([]CountrySummary, len(order))
	for i, country := range order {
		g := groups[country]
		out[i] = CountrySummary{Country: country, Competitors: g.count}
		if g.scored > 0 {
			out[i].AvgPoints = g.sum / float64(g.scored)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Competitors > out[j].Competitors
	})
	return out
}
