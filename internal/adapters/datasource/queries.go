package datasource

// Query is a fixed SQL statement. Text is the cache key; Name labels logs
// and metrics.
type Query struct {
	Name string
	Text string
}

// The two statements the dashboard issues.
var (
	RankingsQuery = Query{
		Name: "rankings",
		Text: `SELECT r.rank, r.movement, r.points, r.competitions_played, c.name AS competitor_name, c.country, c.abbreviation
FROM Competitor_Rankings r
JOIN Competitor c ON r.competitor_id = c.competitor_id`,
	}

	VenuesQuery = Query{
		Name: "venues",
		Text: `SELECT v.venue_id, v.venue_name, v.city_name, v.country_name, v.country_code, v.timezone, c.complex_name
FROM Venues v
JOIN Complexes c ON v.complex_id = c.complex_id`,
	}
)

// Queries lists every statement the service knows about.
func Queries() []Query {
	return []Query{RankingsQuery, VenuesQuery}
}

// Lookup finds a known query by name.
func Lookup(name string) (Query, bool) {
	for _, q := range Queries() {
		if q.Name == name {
			return q, true
		}
	}
	return Query{}, false
}
