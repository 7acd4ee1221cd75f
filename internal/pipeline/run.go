package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/fingerprint"
	"fund-quality-engine/internal/reporting"
	"fund-quality-engine/internal/scoring"
	"fund-quality-engine/internal/storage"
	"fund-quality-engine/internal/validation"
)

// ErrInsufficientData is returned when the sufficiency gate rejects the
// snapshot before any rule runs.
var ErrInsufficientData = errors.New("snapshot failed sufficiency checks")

// Runner orchestrates the phases of one bounded run: snapshot load,
// sufficiency gate, validation, scoring, reporting. Each phase appends an
// audit entry; a failing phase appends a FAILED entry and aborts with no
// partial output.
type Runner struct {
	funds       storage.FundStore
	performance storage.PerformanceStore
	filings     storage.FilingStore
	issues      storage.IssueStore
	alerts      storage.AlertStore
	metrics     storage.MetricStore
	audit       storage.AuditStore

	rules     domain.RuleSet
	outputDir string
	logger    *logrus.Logger

	validator *validation.Validator
	scorer    *scoring.Scorer
	generator *reporting.Generator
	gate      *SufficiencyChecker

	now func() time.Time
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	FundStore   storage.FundStore
	Performance storage.PerformanceStore
	Filings     storage.FilingStore
	Issues      storage.IssueStore
	Alerts      storage.AlertStore
	Metrics     storage.MetricStore
	Audit       storage.AuditStore

	Rules     domain.RuleSet
	OutputDir string
	Logger    *logrus.Logger
}

// NewRunner creates a pipeline runner over the given stores and settings.
func NewRunner(opts RunnerOptions) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Runner{
		funds:       opts.FundStore,
		performance: opts.Performance,
		filings:     opts.Filings,
		issues:      opts.Issues,
		alerts:      opts.Alerts,
		metrics:     opts.Metrics,
		audit:       opts.Audit,
		rules:       opts.Rules,
		outputDir:   opts.OutputDir,
		logger:      logger,
		validator:   validation.New(opts.Rules),
		scorer:      scoring.New(opts.Rules),
		generator: reporting.NewGenerator(
			opts.FundStore, opts.Performance, opts.Filings,
			opts.Issues, opts.Alerts, opts.Metrics,
		),
		gate: NewSufficiencyChecker(opts.Rules),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock for deterministic output. The clock
// propagates to the validator, scorer, and report generator.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	r.validator = r.validator.WithClock(now)
	r.scorer = r.scorer.WithClock(now)
	r.generator = r.generator.WithClock(now)
	return r
}

// RunResult summarizes one completed run.
type RunResult struct {
	Fingerprint    string
	Sufficiency    *SufficiencyResult
	FundsEvaluated int
	Issues         int
	Alerts         int
	SeverityCounts map[domain.Severity]int
	Metrics        int
	Report         *reporting.Report
}

// Run executes the full phase sequence. On a gate failure it writes the
// markdown report showing the failed checks, appends a FAILED audit entry,
// and returns ErrInsufficientData without touching any store.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	snap, fp, suff, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}

	vres, err := r.validate(ctx, snap)
	if err != nil {
		return nil, err
	}

	computed, err := r.score(ctx, snap, vres.Issues)
	if err != nil {
		return nil, err
	}

	report, err := r.report(ctx, fp, suff)
	if err != nil {
		return nil, err
	}

	return &RunResult{
		Fingerprint:    fp,
		Sufficiency:    suff,
		FundsEvaluated: len(snap.Funds),
		Issues:         len(vres.Issues),
		Alerts:         len(vres.Alerts),
		SeverityCounts: vres.SeverityCounts,
		Metrics:        len(computed),
		Report:         report,
	}, nil
}

// RunValidation executes snapshot load, gate, and validation only.
func (r *Runner) RunValidation(ctx context.Context) (*RunResult, error) {
	snap, fp, suff, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}
	vres, err := r.validate(ctx, snap)
	if err != nil {
		return nil, err
	}
	return &RunResult{
		Fingerprint:    fp,
		Sufficiency:    suff,
		FundsEvaluated: len(snap.Funds),
		Issues:         len(vres.Issues),
		Alerts:         len(vres.Alerts),
		SeverityCounts: vres.SeverityCounts,
	}, nil
}

// RunScoring computes metrics from the persisted issue set of the most
// recent validation run and appends them to the time series.
func (r *Runner) RunScoring(ctx context.Context) (*RunResult, error) {
	snap, fp, suff, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}
	issues, err := r.issues.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load issues: %w", err)
	}
	computed, err := r.score(ctx, snap, issues)
	if err != nil {
		return nil, err
	}
	return &RunResult{
		Fingerprint:    fp,
		Sufficiency:    suff,
		FundsEvaluated: len(snap.Funds),
		Issues:         len(issues),
		Metrics:        len(computed),
	}, nil
}

// RunReport renders the report and extracts from whatever the stores hold.
func (r *Runner) RunReport(ctx context.Context) (*RunResult, error) {
	snap, fp, suff, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}
	report, err := r.report(ctx, fp, suff)
	if err != nil {
		return nil, err
	}
	return &RunResult{
		Fingerprint:    fp,
		Sufficiency:    suff,
		FundsEvaluated: len(snap.Funds),
		Report:         report,
	}, nil
}

// prepare loads the snapshot, fingerprints it, and runs the gate.
func (r *Runner) prepare(ctx context.Context) (*domain.Snapshot, string, *SufficiencyResult, error) {
	start := r.now()

	snap, err := r.loadSnapshot(ctx)
	if err != nil {
		r.logFailure(ctx, "load_snapshot", "", start, err)
		return nil, "", nil, err
	}
	fp := fingerprint.Snapshot(snap)

	suff := r.gate.Check(snap)
	if !suff.AllPass {
		gateErr := fmt.Errorf("%w: %v", ErrInsufficientData, suff.Errors)
		r.logFailure(ctx, "sufficiency_gate", "", start, gateErr)
		if err := r.writeGateFailureReport(fp, snap, suff); err != nil {
			r.logger.WithError(err).Error("write gate failure report")
		}
		return nil, "", nil, gateErr
	}

	r.logger.WithFields(logrus.Fields{
		"phase":       "prepare",
		"fingerprint": fp,
		"funds":       len(snap.Funds),
		"performance": len(snap.Performance),
		"filings":     len(snap.Filings),
	}).Info("snapshot loaded")

	return snap, fp, suff, nil
}

// loadSnapshot reads all three collections into the immutable run input.
func (r *Runner) loadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	funds, err := r.funds.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load funds: %w", err)
	}
	observations, err := r.performance.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load performance: %w", err)
	}
	filings, err := r.filings.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load filings: %w", err)
	}
	return &domain.Snapshot{
		Funds:       funds,
		Performance: observations,
		Filings:     filings,
	}, nil
}

// validate runs the rule catalogue and replaces the persisted issue and
// alert sets. The critical alert extract is written here so it exists even
// when the reporting phase is skipped.
func (r *Runner) validate(ctx context.Context, snap *domain.Snapshot) (*validation.Result, error) {
	start := r.now()

	result, err := r.validator.Run(snap)
	if err != nil {
		r.logFailure(ctx, "validate", "", start, err)
		return nil, fmt.Errorf("validate: %w", err)
	}

	if err := r.issues.ReplaceAll(ctx, result.Issues); err != nil {
		r.logFailure(ctx, "validate", "quality_issues", start, err)
		return nil, fmt.Errorf("persist issues: %w", err)
	}
	r.appendAudit(ctx, "validate", "quality_issues", len(result.Issues), start)

	if err := r.alerts.ReplaceAll(ctx, result.Alerts); err != nil {
		r.logFailure(ctx, "validate", "quality_alerts", start, err)
		return nil, fmt.Errorf("persist alerts: %w", err)
	}
	r.appendAudit(ctx, "validate", "quality_alerts", len(result.Alerts), start)

	if err := r.writeOutputFile("CRITICAL_ALERTS.csv", reporting.RenderAlertsCSV(result.Alerts)); err != nil {
		r.logFailure(ctx, "validate", "CRITICAL_ALERTS.csv", start, err)
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{
		"phase":       "validate",
		"issues":      len(result.Issues),
		"alerts":      len(result.Alerts),
		"duration_ms": r.now().Sub(start).Milliseconds(),
	}).Info("validation complete")

	return result, nil
}

// score computes the metric set and appends it to the time series.
func (r *Runner) score(ctx context.Context, snap *domain.Snapshot, issues []domain.Issue) ([]domain.Metric, error) {
	start := r.now()

	computed, err := r.scorer.Compute(snap, issues)
	if err != nil {
		r.logFailure(ctx, "score", "", start, err)
		return nil, fmt.Errorf("score: %w", err)
	}
	if err := r.metrics.Append(ctx, computed); err != nil {
		r.logFailure(ctx, "score", "quality_metrics", start, err)
		return nil, fmt.Errorf("append metrics: %w", err)
	}
	r.appendAudit(ctx, "score", "quality_metrics", len(computed), start)

	r.logger.WithFields(logrus.Fields{
		"phase":       "score",
		"metrics":     len(computed),
		"duration_ms": r.now().Sub(start).Milliseconds(),
	}).Info("scoring complete")

	return computed, nil
}

// report generates the run report and writes all extracts.
func (r *Runner) report(ctx context.Context, fp string, suff *SufficiencyResult) (*reporting.Report, error) {
	start := r.now()

	report, err := r.generator.Generate(ctx, fp, toSufficiencySection(suff))
	if err != nil {
		r.logFailure(ctx, "report", "", start, err)
		return nil, fmt.Errorf("generate report: %w", err)
	}
	if err := r.generator.WriteOutputs(ctx, r.outputDir, report); err != nil {
		r.logFailure(ctx, "report", "", start, err)
		return nil, fmt.Errorf("write outputs: %w", err)
	}
	r.appendAudit(ctx, "report", "", 0, start)

	r.logger.WithFields(logrus.Fields{
		"phase":       "report",
		"output_dir":  r.outputDir,
		"duration_ms": r.now().Sub(start).Milliseconds(),
	}).Info("reporting complete")

	return report, nil
}

// writeGateFailureReport renders a report carrying only the snapshot shape
// and the failed checks, so the gate outcome is inspectable without a run.
func (r *Runner) writeGateFailureReport(fp string, snap *domain.Snapshot, suff *SufficiencyResult) error {
	report := &reporting.Report{
		GeneratedAt:         r.now(),
		SnapshotFingerprint: fp,
		RecordCounts: reporting.RecordCounts{
			Funds:       len(snap.Funds),
			Performance: len(snap.Performance),
			Filings:     len(snap.Filings),
		},
		Sufficiency: toSufficiencySection(suff),
	}
	return r.writeOutputFile("quality_report.md", reporting.RenderMarkdown(report))
}

func (r *Runner) writeOutputFile(name, content string) error {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.outputDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (r *Runner) appendAudit(ctx context.Context, operation, table string, rows int, start time.Time) {
	entry := &domain.AuditEntry{
		LoggedAt:        r.now(),
		Operation:       operation,
		TableName:       table,
		RecordsAffected: rows,
		DurationMs:      r.now().Sub(start).Milliseconds(),
		Status:          domain.AuditStatusSuccess,
	}
	if err := r.audit.Append(ctx, entry); err != nil {
		r.logger.WithError(err).Error("append audit entry")
	}
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

// toSufficiencySection converts the gate result into its report form.
func toSufficiencySection(suff *SufficiencyResult) reporting.SufficiencySection {
	if suff == nil {
		return reporting.SufficiencySection{}
	}
	checks := make([]reporting.SufficiencyCheckRow, len(suff.Checks))
	for i, c := range suff.Checks {
		checks[i] = reporting.SufficiencyCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		}
	}
	return reporting.SufficiencySection{
		Checks:          checks,
		AllChecksPassed: suff.AllPass,
	}
}
