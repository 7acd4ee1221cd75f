// Command ingest loads the raw fund, performance, and filing files,
// standardizes them, and replaces the persistent collections.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fund-quality-engine/internal/config"
	"fund-quality-engine/internal/ingestion"
	"fund-quality-engine/internal/storage/migrations"
	pgstore "fund-quality-engine/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	fundCSV := flag.String("fund-csv", "", "Fund master CSV path (overrides config)")
	performanceJSON := flag.String("performance-json", "", "Performance JSON path (overrides config)")
	filingsJSON := flag.String("filings-json", "", "Regulatory filings JSON path (overrides config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *fundCSV != "" {
		cfg.Inputs.FundCSV = *fundCSV
	}
	if *performanceJSON != "" {
		cfg.Inputs.PerformanceJSON = *performanceJSON
	}
	if *filingsJSON != "" {
		cfg.Inputs.FilingsJSON = *filingsJSON
	}
	if *postgresDSN != "" {
		cfg.PostgresDSN = *postgresDSN
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: connect postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Error: migrate postgres: %v\n", err)
		os.Exit(1)
	}

	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Standardizer: ingestion.NewStandardizer(cfg.CurrencyRates(), logger),
		FundStore:    pgstore.NewFundStore(pool),
		Performance:  pgstore.NewPerformanceStore(pool),
		Filings:      pgstore.NewFilingStore(pool),
		Audit:        pgstore.NewAuditStore(pool),
		Logger:       logger,
	})

	stats, err := runner.Run(ctx, ingestion.Paths{
		FundCSV:         cfg.Inputs.FundCSV,
		PerformanceJSON: cfg.Inputs.PerformanceJSON,
		FilingsJSON:     cfg.Inputs.FilingsJSON,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Ingestion complete:")
	fmt.Printf("  Funds:       %d\n", stats.FundsIngested)
	fmt.Printf("  Performance: %d\n", stats.PerformanceIngested)
	fmt.Printf("  Filings:     %d\n", stats.FilingsIngested)
}
