package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/courtview/internal/adapters/datasource"
	"github.com/okian/courtview/internal/config"
	"github.com/okian/courtview/internal/seed"
	"github.com/okian/courtview/pkg/logger"
)

// Default configuration constants.
const (
	defaultCompetitors = 100
	defaultVenues      = 20
	defaultComplexes   = 5
	defaultSeedTimeout = 2 * time.Minute
)

func main() {
	var (
		competitors = flag.Int("competitors", defaultCompetitors, "Number of ranked competitors")
		venues      = flag.Int("venues", defaultVenues, "Number of venues")
		complexes   = flag.Int("complexes", defaultComplexes, "Number of complexes the venues are spread over")
		reset       = flag.Bool("reset", false, "Drop and recreate the tables first")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	err := run(seed.Config{
		Competitors: *competitors,
		Venues:      *venues,
		Complexes:   *complexes,
		Reset:       *reset,
	})
	if err != nil {
		os.Stderr.WriteString("seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(sc seed.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	// One connection keeps the DDL and the insert transaction serialized.
	db, err := datasource.OpenDB(datasource.PoolConfig{
		Addr:           cfg.DBAddr(),
		User:           cfg.DBUser,
		Password:       cfg.DBPassword,
		Database:       cfg.DBName,
		MaxOpenConns:   1,
		MaxIdleConns:   1,
		ConnectTimeout: cfg.ConnectTimeout(),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	logger.Named("seed").Info(ctx, "seeding database",
		logger.String("addr", cfg.DBAddr()),
		logger.String("database", cfg.DBName),
		logger.Bool("reset", sc.Reset),
	)
	_, err = seed.Run(ctx, db, sc)
	return err
}
