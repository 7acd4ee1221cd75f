// Command validate runs the rule catalogue against the persisted snapshot
// and replaces the issue and alert sets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fund-quality-engine/internal/config"
	"fund-quality-engine/internal/pipeline"
	chstore "fund-quality-engine/internal/storage/clickhouse"
	"fund-quality-engine/internal/storage/migrations"
	pgstore "fund-quality-engine/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides config)")
	outputDir := flag.String("output-dir", "", "Output directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *postgresDSN != "" {
		cfg.PostgresDSN = *postgresDSN
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
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
	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: migrate clickhouse: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	runner := pipeline.NewRunner(pipeline.RunnerOptions{
		FundStore:   pgstore.NewFundStore(pool),
		Performance: pgstore.NewPerformanceStore(pool),
		Filings:     pgstore.NewFilingStore(pool),
		Issues:      pgstore.NewIssueStore(pool),
		Alerts:      pgstore.NewAlertStore(pool),
		Metrics:     chstore.NewMetricStore(conn),
		Audit:       pgstore.NewAuditStore(pool),
		Rules:       cfg.Rules,
		OutputDir:   cfg.OutputDir,
		Logger:      logger,
	})

	result, err := runner.RunValidation(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrInsufficientData) {
			fmt.Fprintf(os.Stderr, "Insufficient data: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Println("Validation complete:")
	fmt.Printf("  Snapshot:    %s\n", result.Fingerprint)
	fmt.Printf("  Funds:       %d\n", result.FundsEvaluated)
	fmt.Printf("  Issues:      %d\n", result.Issues)
	fmt.Printf("  Alerts:      %d\n", result.Alerts)
}
