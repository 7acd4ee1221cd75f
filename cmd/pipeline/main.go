// Command pipeline runs the end-to-end sequence: ingest source files,
// validate the snapshot, compute scores, and write the report bundle.
// With -memory it runs entirely in process, without a database.
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
	"fund-quality-engine/internal/ingestion"
	"fund-quality-engine/internal/pipeline"
	"fund-quality-engine/internal/storage"
	chstore "fund-quality-engine/internal/storage/clickhouse"
	"fund-quality-engine/internal/storage/memory"
	"fund-quality-engine/internal/storage/migrations"
	pgstore "fund-quality-engine/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	useMemory := flag.Bool("memory", false, "Use in-memory stores instead of databases")
	outputDir := flag.String("output-dir", "", "Output directory (overrides config)")
	fundCSV := flag.String("fund-csv", "", "Fund master CSV path (overrides config)")
	performanceJSON := flag.String("performance-json", "", "Performance JSON path (overrides config)")
	filingsJSON := flag.String("filings-json", "", "Regulatory filings JSON path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
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

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		stores  *allStores
		cleanup func()
	)
	if *useMemory {
		stores = createMemoryStores()
		cleanup = func() {}
	} else {
		stores, cleanup, err = createDatabaseStores(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	defer cleanup()

	ingestRunner := ingestion.NewRunner(ingestion.RunnerOptions{
		Standardizer: ingestion.NewStandardizer(cfg.CurrencyRates(), logger),
		FundStore:    stores.funds,
		Performance:  stores.performance,
		Filings:      stores.filings,
		Audit:        stores.audit,
		Logger:       logger,
	})

	stats, err := ingestRunner.Run(ctx, ingestion.Paths{
		FundCSV:         cfg.Inputs.FundCSV,
		PerformanceJSON: cfg.Inputs.PerformanceJSON,
		FilingsJSON:     cfg.Inputs.FilingsJSON,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: ingestion: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Ingestion complete:")
	fmt.Printf("  Funds:       %d\n", stats.FundsIngested)
	fmt.Printf("  Performance: %d\n", stats.PerformanceIngested)
	fmt.Printf("  Filings:     %d\n", stats.FilingsIngested)

	runner := pipeline.NewRunner(pipeline.RunnerOptions{
		FundStore:   stores.funds,
		Performance: stores.performance,
		Filings:     stores.filings,
		Issues:      stores.issues,
		Alerts:      stores.alerts,
		Metrics:     stores.metrics,
		Audit:       stores.audit,
		Rules:       cfg.Rules,
		OutputDir:   cfg.OutputDir,
		Logger:      logger,
	})

	result, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrInsufficientData) {
			fmt.Fprintf(os.Stderr, "Insufficient data: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Println("Pipeline complete:")
	fmt.Printf("  Snapshot:    %s\n", result.Fingerprint)
	fmt.Printf("  Funds:       %d\n", result.FundsEvaluated)
	fmt.Printf("  Issues:      %d\n", result.Issues)
	fmt.Printf("  Alerts:      %d\n", result.Alerts)
	fmt.Printf("  Metrics:     %d\n", result.Metrics)
	fmt.Printf("  Output dir:  %s\n", cfg.OutputDir)
}

// allStores bundles the stores both runners share.
type allStores struct {
	funds       storage.FundStore
	performance storage.PerformanceStore
	filings     storage.FilingStore
	issues      storage.IssueStore
	alerts      storage.AlertStore
	metrics     storage.MetricStore
	audit       storage.AuditStore
}

func createMemoryStores() *allStores {
	return &allStores{
		funds:       memory.NewFundStore(),
		performance: memory.NewPerformanceStore(),
		filings:     memory.NewFilingStore(),
		issues:      memory.NewIssueStore(),
		alerts:      memory.NewAlertStore(),
		metrics:     memory.NewMetricStore(),
		audit:       memory.NewAuditStore(),
	}
}

func createDatabaseStores(ctx context.Context, cfg *config.Config) (*allStores, func(), error) {
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}
	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
	}

	stores := &allStores{
		funds:       pgstore.NewFundStore(pool),
		performance: pgstore.NewPerformanceStore(pool),
		filings:     pgstore.NewFilingStore(pool),
		issues:      pgstore.NewIssueStore(pool),
		alerts:      pgstore.NewAlertStore(pool),
		metrics:     chstore.NewMetricStore(conn),
		audit:       pgstore.NewAuditStore(pool),
	}
	cleanup := func() {
		conn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}
