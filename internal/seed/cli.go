package seed

import "os"

// ShowHelp prints usage information for the seeder.
func ShowHelp() {
	os.Stdout.WriteString(`courtview seeder
================

Creates the Competitor, Competitor_Rankings, Venues and Complexes tables when
missing and fills them with synthetic demo data. Connection settings come from
the service configuration (COURTVIEW_CONFIG file and COURTVIEW_DB_* env vars).

Usage:
  go run ./cmd/seed [options]

Options:
  -competitors int
        Number of ranked competitors (default 100)
  -venues int
        Number of venues (default 20)
  -complexes int
        Number of complexes the venues are spread over (default 5)
  -reset
        Drop and recreate the tables first
  -help
        Show this help message

Examples:
  # Seed a local database with defaults
  go run ./cmd/seed

  # Start over with a larger field
  COURTVIEW_DB_PASSWORD=secret go run ./cmd/seed -reset -competitors 500
`)
}
