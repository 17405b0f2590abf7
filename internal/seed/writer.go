package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okian/courtview/pkg/logger"
)

// DB is the subset of *sql.DB the seeder needs.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Run creates the schema if needed and inserts a generated dataset in a
// single transaction. With cfg.Reset the tables are dropped first.
func Run(ctx context.Context, db DB, cfg Config) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}
	log := logger.Named("seed")
	stats := Stats{StartTime: time.Now()}

	if cfg.Reset {
		for _, stmt := range dropStatements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return stats, fmt.Errorf("reset schema: %w", err)
			}
		}
		log.Info(ctx, "dropped existing tables")
	}
	for _, stmt := range createStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return stats, fmt.Errorf("create schema: %w", err)
		}
	}

	ds := Generate(cfg)
	log.Info(ctx, "generated dataset",
		logger.Int("competitors", len(ds.Competitors)),
		logger.Int("complexes", len(ds.Complexes)),
		logger.Int("venues", len(ds.Venues)),
	)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin: %w", err)
	}
	if err := insert(ctx, tx, ds, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{StartTime: stats.StartTime}, err
	}
	if err := tx.Commit(); err != nil {
		return Stats{StartTime: stats.StartTime}, fmt.Errorf("commit: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "seeding complete",
		logger.Int("competitors", stats.Competitors),
		logger.Int("rankings", stats.Rankings),
		logger.Int("venues", stats.Venues),
		logger.Duration("took", stats.Duration),
	)
	return stats, nil
}

func insert(ctx context.Context, tx *sql.Tx, ds Dataset, stats *Stats) error {
	for _, c := range ds.Complexes {
		if _, err := tx.ExecContext(ctx, insertComplex, c.ID, c.Name); err != nil {
			return fmt.Errorf("insert complex %s: %w", c.ID, err)
		}
		stats.Complexes++
	}
	for _, v := range ds.Venues {
		if _, err := tx.ExecContext(ctx, insertVenue,
			v.ID, v.Name, v.Country.City, v.Country.Name, v.Country.Code, v.Country.Timezone, v.ComplexID); err != nil {
			return fmt.Errorf("insert venue %s: %w", v.ID, err)
		}
		stats.Venues++
	}
	for _, c := range ds.Competitors {
		if _, err := tx.ExecContext(ctx, insertCompetitor,
			c.ID, c.Name, c.Country.Name, c.Country.Code, c.Abbreviation); err != nil {
			return fmt.Errorf("insert competitor %s: %w", c.ID, err)
		}
		stats.Competitors++
		if _, err := tx.ExecContext(ctx, insertRanking,
			c.Rank, c.Movement, c.Points, c.CompetitionsPlayed, c.ID); err != nil {
			return fmt.Errorf("insert ranking %d: %w", c.Rank, err)
		}
		stats.Rankings++
	}
	return nil
}
