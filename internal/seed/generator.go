package seed

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Ranges for generated ranking values.
const (
	topPoints       = 12000
	pointsStep      = 110
	pointsJitter    = 100
	minPoints       = 10
	movementSpan    = 10
	minCompetitions = 10
	maxCompetitions = 30
)

type country struct {
	Name     string
	Code     string
	City     string
	Timezone string
}

var countries = []country{
	{"USA", "USA", "New York", "America/New_York"},
	{"Spain", "ESP", "Madrid", "Europe/Madrid"},
	{"Italy", "ITA", "Rome", "Europe/Rome"},
	{"Germany", "DEU", "Hamburg", "Europe/Berlin"},
	{"France", "FRA", "Paris", "Europe/Paris"},
	{"China", "CHN", "Beijing", "Asia/Shanghai"},
	{"Australia", "AUS", "Melbourne", "Australia/Melbourne"},
	{"Serbia", "SRB", "Belgrade", "Europe/Belgrade"},
	{"Great Britain", "GBR", "London", "Europe/London"},
	{"Japan", "JPN", "Tokyo", "Asia/Tokyo"},
}

var (
	firstNames = []string{"Carlos", "Jannik", "Alexander", "Taylor", "Tommy", "Yafan", "Shuai", "Na", "Novak", "Casper", "Daniil", "Holger", "Ben", "Alex", "Naomi", "Emma"}
	lastNames  = []string{"Wang", "Zhang", "Li", "Sinner", "Alcaraz", "Zverev", "Fritz", "Paul", "Ruud", "Rune", "Shelton", "Draper", "Osaka", "Navarro", "Dimitrov", "Popyrin"}
	venueKinds = []string{"Centre Court", "Court 1", "Stadium", "Arena", "Grandstand", "Show Court"}
)

// Competitor is one generated player with its ranking row.
type Competitor struct {
	ID                 string
	Name               string
	Country            country
	Abbreviation       string
	Rank               int
	Movement           int
	Points             int
	CompetitionsPlayed int
}

// Complex groups venues.
type Complex struct {
	ID   string
	Name string
}

// Venue belongs to one complex.
type Venue struct {
	ID        string
	Name      string
	Country   country
	ComplexID string
}

// Dataset is everything one run inserts.
type Dataset struct {
	Competitors []Competitor
	Complexes   []Complex
	Venues      []Venue
}

// randInt returns a uniform integer in [lo, hi] using crypto/rand.
func randInt(lo, hi int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo+1)))
	if err != nil {
		return lo
	}
	return lo + int(n.Int64())
}

// Generate builds a dataset with unique ranks 1..Competitors and points
// that never increase with rank.
func Generate(cfg Config) Dataset {
	ds := Dataset{
		Competitors: make([]Competitor, cfg.Competitors),
		Complexes:   make([]Complex, cfg.Complexes),
		Venues:      make([]Venue, cfg.Venues),
	}

	prev := topPoints + pointsJitter
	for i := range ds.Competitors {
		rank := i + 1
		name := competitorName(i)
		points := max(topPoints-i*pointsStep-randInt(0, pointsJitter-1), minPoints)
		points = min(points, prev)
		prev = points

		ds.Competitors[i] = Competitor{
			ID:                 "sr:competitor:" + uuid.NewString(),
			Name:               name,
			Country:            countries[randInt(0, len(countries)-1)],
			Abbreviation:       abbreviation(name),
			Rank:               rank,
			Movement:           randInt(-movementSpan, movementSpan),
			Points:             points,
			CompetitionsPlayed: randInt(minCompetitions, maxCompetitions),
		}
	}

	for i := range ds.Complexes {
		c := countries[i%len(countries)]
		ds.Complexes[i] = Complex{
			ID:   "sr:complex:" + uuid.NewString(),
			Name: fmt.Sprintf("%s Tennis Complex %d", c.City, i+1),
		}
	}
	for i := range ds.Venues {
		cx := i % len(ds.Complexes)
		ds.Venues[i] = Venue{
			ID:        "sr:venue:" + uuid.NewString(),
			Name:      fmt.Sprintf("%s %d", venueKinds[i%len(venueKinds)], i+1),
			Country:   countries[cx%len(countries)],
			ComplexID: ds.Complexes[cx].ID,
		}
	}
	return ds
}

// competitorName yields a distinct "First Last" for every index.
func competitorName(i int) string {
	first := firstNames[i%len(firstNames)]
	last := lastNames[(i/len(firstNames))%len(lastNames)]
	name := first + " " + last
	if round := i / (len(firstNames) * len(lastNames)); round > 0 {
		name = fmt.Sprintf("%s %d", name, round+1)
	}
	return name
}

func abbreviation(name string) string {
	parts := strings.Fields(name)
	last := parts[len(parts)-1]
	if len(parts) > 2 {
		last = parts[1]
	}
	if len(last) > 3 {
		last = last[:3]
	}
	return strings.ToUpper(last)
}
