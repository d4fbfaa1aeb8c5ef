package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/profitalyze/backend/internal/infrastructure/config"
	"github.com/profitalyze/backend/internal/infrastructure/logger"
	"github.com/profitalyze/backend/internal/infrastructure/persistence"
	"github.com/profitalyze/backend/internal/infrastructure/seed"
)

func main() {
	var (
		dir       string
		batchSize int
		maxErrors int
		dryRun    bool
		logLevel  string
	)
	flag.StringVar(&dir, "dir", "data", "Directory holding <table>.csv files")
	flag.IntVar(&batchSize, "batch", 500, "Rows per INSERT statement")
	flag.IntVar(&maxErrors, "max-errors", 100, "Row errors reported per file")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate the files without writing")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		log.Fatal("Seed directory not found", zap.String("dir", dir))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel("warn")))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := seed.NewLoader(db.DB, log,
		seed.WithBatchSize(batchSize),
		seed.WithMaxErrors(maxErrors),
		seed.WithDryRun(dryRun),
	)

	result, err := loader.Load(ctx, os.DirFS(dir))
	if err != nil {
		var verr *seed.ValidationError
		if errors.As(err, &verr) {
			log.Error("Seed file has invalid rows",
				zap.String("file", verr.File),
				zap.Int("errors", verr.Errors.Total()),
			)
			fmt.Fprintln(os.Stderr, verr.Error())
			os.Exit(1)
		}
		log.Fatal("Seed failed", zap.Error(err))
	}

	for _, t := range result.Tables {
		if t.Skipped {
			continue
		}
		fmt.Printf("  %-14s %d rows\n", t.Table, t.Rows)
	}
	log.Info("Seed complete", zap.Int("rows", result.Rows()), zap.Bool("dry_run", result.DryRun))
}

func printUsage() {
	fmt.Println(`Profitalyze Dataset Seeder

Usage:
  seed [flags]

Loads categories.csv, products.csv, customers.csv, deals.csv,
transactions.csv, deal_usages.csv and cart_items.csv from the seed
directory, in that order. Missing files are skipped. Every file is
validated before anything is written; rows go in one transaction.

Flags:
  -dir string         Seed directory (default: data)
  -batch int          Rows per INSERT statement (default: 500)
  -max-errors int     Row errors reported per file (default: 100)
  -dry-run            Validate only
  -log-level string   Log level: debug, info, warn, error (default: info)

The database connection comes from config.toml and PROFITALYZE_DATABASE_* variables.`)
}
