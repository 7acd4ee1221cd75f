package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// Paths names the three input files for one ingestion run.
type Paths struct {
	FundCSV         string
	PerformanceJSON string
	FilingsJSON     string
}

// Stats summarizes one ingestion run.
type Stats struct {
	FundsIngested       int
	PerformanceIngested int
	FilingsIngested     int
}

// Runner loads the raw input files, standardizes them, and replaces the
// persistent collections. Each table gets one audit entry; a failed step
// appends a FAILED entry and aborts the run.
type Runner struct {
	standardizer *Standardizer
	funds        storage.FundStore
	performance  storage.PerformanceStore
	filings      storage.FilingStore
	audit        storage.AuditStore
	logger       *logrus.Logger
	now          func() time.Time
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Standardizer *Standardizer
	FundStore    storage.FundStore
	Performance  storage.PerformanceStore
	Filings      storage.FilingStore
	Audit        storage.AuditStore
	Logger       *logrus.Logger
}

// NewRunner creates a new ingestion runner.
func NewRunner(opts RunnerOptions) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Runner{
		standardizer: opts.Standardizer,
		funds:        opts.FundStore,
		performance:  opts.Performance,
		filings:      opts.Filings,
		audit:        opts.Audit,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock replaces the runner's clock. Audit timestamps become
// deterministic in tests.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run ingests all three inputs. Everything standardizes in memory before
// any store is touched, so a parse failure leaves the stores untouched.
func (r *Runner) Run(ctx context.Context, paths Paths) (*Stats, error) {
	start := r.now()

	rawFunds, err := LoadFundCSV(paths.FundCSV)
	if err != nil {
		r.logFailure(ctx, "ingest", "funds", start, err)
		return nil, fmt.Errorf("ingest funds: %w", err)
	}
	observations, err := LoadPerformanceJSON(paths.PerformanceJSON)
	if err != nil {
		r.logFailure(ctx, "ingest", "fund_performance", start, err)
		return nil, fmt.Errorf("ingest performance: %w", err)
	}
	filings, err := LoadFilingsJSON(paths.FilingsJSON)
	if err != nil {
		r.logFailure(ctx, "ingest", "regulatory_filings", start, err)
		return nil, fmt.Errorf("ingest filings: %w", err)
	}

	funds := r.standardizer.StandardizeFunds(rawFunds)
	observations = r.standardizer.StandardizePerformance(observations)

	if err := r.replaceTable(ctx, "funds", len(funds), func() error {
		return r.funds.ReplaceAll(ctx, funds)
	}); err != nil {
		return nil, err
	}
	if err := r.replaceTable(ctx, "fund_performance", len(observations), func() error {
		return r.performance.ReplaceAll(ctx, observations)
	}); err != nil {
		return nil, err
	}
	if err := r.replaceTable(ctx, "regulatory_filings", len(filings), func() error {
		return r.filings.ReplaceAll(ctx, filings)
	}); err != nil {
		return nil, err
	}

	stats := &Stats{
		FundsIngested:       len(funds),
		PerformanceIngested: len(observations),
		FilingsIngested:     len(filings),
	}
	r.logger.WithFields(logrus.Fields{
		"phase":       "ingest",
		"funds":       stats.FundsIngested,
		"performance": stats.PerformanceIngested,
		"filings":     stats.FilingsIngested,
		"duration_ms": r.now().Sub(start).Milliseconds(),
	}).Info("ingestion complete")

	return stats, nil
}

func (r *Runner) replaceTable(ctx context.Context, table string, rows int, replace func() error) error {
	start := r.now()
	if err := replace(); err != nil {
		r.logFailure(ctx, "ingest", table, start, err)
		return fmt.Errorf("replace %s: %w", table, err)
	}

	entry := &domain.AuditEntry{
		LoggedAt:        r.now(),
		Operation:       "ingest",
		TableName:       table,
		RecordsAffected: rows,
		DurationMs:      r.now().Sub(start).Milliseconds(),
		Status:          domain.AuditStatusSuccess,
	}
	if err := r.audit.Append(ctx, entry); err != nil {
		return fmt.Errorf("audit %s: %w", table, err)
	}
	return nil
}

func (r *Runner) logFailure(ctx context.Context, operation, table string, start time.Time, cause error) {
	msg := cause.Error()
	entry := &domain.AuditEntry{
		LoggedAt:     r.now(),
		Operation:    operation,
		TableName:    table,
		DurationMs:   r.now().Sub(start).Milliseconds(),
		Status:       domain.AuditStatusFailed,
		ErrorMessage: &msg,
	}
	if err := r.audit.Append(ctx, entry); err != nil {
		r.logger.WithError(err).Error("append failure audit entry")
	}
}
