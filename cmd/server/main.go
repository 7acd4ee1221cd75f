// Command server runs the engine as a long-lived service: the full
// ingest-validate-score-report sequence on a fixed interval, with
// Prometheus metrics and a health endpoint.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"fund-quality-engine/internal/config"
	"fund-quality-engine/internal/ingestion"
	"fund-quality-engine/internal/observability"
	"fund-quality-engine/internal/orchestrator"
	"fund-quality-engine/internal/pipeline"
	chstore "fund-quality-engine/internal/storage/clickhouse"
	"fund-quality-engine/internal/storage/migrations"
	pgstore "fund-quality-engine/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	listenAddr := flag.String("listen", "", "HTTP listen address (overrides config)")
	interval := flag.Duration("interval", 0, "Run interval (overrides config)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (overrides config)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}
	if *interval > 0 {
		cfg.Server.RunInterval = config.Duration(*interval)
	}
	if *postgresDSN != "" {
		cfg.PostgresDSN = *postgresDSN
	}
	if *clickhouseDSN != "" {
		cfg.ClickhouseDSN = *clickhouseDSN
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

	fundStore := pgstore.NewFundStore(pool)
	performanceStore := pgstore.NewPerformanceStore(pool)
	filingStore := pgstore.NewFilingStore(pool)
	auditStore := pgstore.NewAuditStore(pool)

	ingestRunner := ingestion.NewRunner(ingestion.RunnerOptions{
		Standardizer: ingestion.NewStandardizer(cfg.CurrencyRates(), logger),
		FundStore:    fundStore,
		Performance:  performanceStore,
		Filings:      filingStore,
		Audit:        auditStore,
		Logger:       logger,
	})

	pipelineRunner := pipeline.NewRunner(pipeline.RunnerOptions{
		FundStore:   fundStore,
		Performance: performanceStore,
		Filings:     filingStore,
		Issues:      pgstore.NewIssueStore(pool),
		Alerts:      pgstore.NewAlertStore(pool),
		Metrics:     chstore.NewMetricStore(conn),
		Audit:       auditStore,
		Rules:       cfg.Rules,
		OutputDir:   cfg.OutputDir,
		Logger:      logger,
	})

	metrics := observability.NewMetrics("", nil)

	scheduler := orchestrator.New(orchestrator.Options{
		Ingest:   ingestRunner,
		Paths:    ingestion.Paths{FundCSV: cfg.Inputs.FundCSV, PerformanceJSON: cfg.Inputs.PerformanceJSON, FilingsJSON: cfg.Inputs.FilingsJSON},
		Pipeline: pipelineRunner,
		Interval: cfg.Server.RunInterval.Std(),
		Metrics:  metrics,
		Logger:   logger,
	})

	srv := newHTTPServer(cfg.Server.ListenAddr, logger)
	go func() {
		logger.WithField("addr", cfg.Server.ListenAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("http server stopped")
			cancel()
		}
	}()

	logger.WithFields(logrus.Fields{
		"interval":   cfg.Server.RunInterval.Std().String(),
		"output_dir": cfg.OutputDir,
	}).Info("scheduler starting")

	err = scheduler.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.WithError(serr).Warn("http shutdown")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newHTTPServer(addr string, logger *logrus.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			logger.WithError(err).Warn("write health response")
		}
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
