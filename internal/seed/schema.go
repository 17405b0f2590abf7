package seed

// createStatements create the four tables when missing. rank is a reserved
// word in MySQL 8 and must be quoted in DDL.
var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS Competitor (
	competitor_id VARCHAR(64) NOT NULL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	country VARCHAR(100) NOT NULL,
	country_code CHAR(3) NOT NULL,
	abbreviation VARCHAR(10) NOT NULL
)`,
	"CREATE TABLE IF NOT EXISTS Competitor_Rankings (\n" +
		"\trank_id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,\n" +
		"\t`rank` INT NOT NULL,\n" +
		"\tmovement INT NOT NULL,\n" +
		"\tpoints INT NOT NULL,\n" +
		"\tcompetitions_played INT NOT NULL,\n" +
		"\tcompetitor_id VARCHAR(64) NOT NULL,\n" +
		"\tFOREIGN KEY (competitor_id) REFERENCES Competitor(competitor_id)\n" +
		")",
	`CREATE TABLE IF NOT EXISTS Complexes (
	complex_id VARCHAR(64) NOT NULL PRIMARY KEY,
	complex_name VARCHAR(255) NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS Venues (
	venue_id VARCHAR(64) NOT NULL PRIMARY KEY,
	venue_name VARCHAR(255) NOT NULL,
	city_name VARCHAR(100) NOT NULL,
	country_name VARCHAR(100) NOT NULL,
	country_code CHAR(3) NOT NULL,
	timezone VARCHAR(100) NOT NULL,
	complex_id VARCHAR(64) NOT NULL,
	FOREIGN KEY (complex_id) REFERENCES Complexes(complex_id)
)`,
}

// dropStatements remove the tables, children first.
var dropStatements = []string{
	"DROP TABLE IF EXISTS Competitor_Rankings",
	"DROP TABLE IF EXISTS Competitor",
	"DROP TABLE IF EXISTS Venues",
	"DROP TABLE IF EXISTS Complexes",
}

const (
	insertComplex    = "INSERT INTO Complexes (complex_id, complex_name) VALUES (?, ?)"
	insertVenue      = "INSERT INTO Venues (venue_id, venue_name, city_name, country_name, country_code, timezone, complex_id) VALUES (?, ?, ?, ?, ?, ?, ?)"
	insertCompetitor = "INSERT INTO Competitor (competitor_id, name, country, country_code, abbreviation) VALUES (?, ?, ?, ?, ?)"
	insertRanking    = "INSERT INTO Competitor_Rankings (`rank`, movement, points, competitions_played, competitor_id) VALUES (?, ?, ?, ?, ?)"
)
