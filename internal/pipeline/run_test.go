package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage/memory"
)

func ptr[T any](v T) *T { return &v }

type testStores struct {
	funds       *memory.FundStore
	performance *memory.PerformanceStore
	filings     *memory.FilingStore
	issues      *memory.IssueStore
	alerts      *memory.AlertStore
	metrics     *memory.MetricStore
	audit       *memory.AuditStore
}

func newTestStores() *testStores {
	return &testStores{
		funds:       memory.NewFundStore(),
		performance: memory.NewPerformanceStore(),
		filings:     memory.NewFilingStore(),
		issues:      memory.NewIssueStore(),
		alerts:      memory.NewAlertStore(),
		metrics:     memory.NewMetricStore(),
		audit:       memory.NewAuditStore(),
	}
}

func newTestRunner(t *testing.T, stores *testStores, outputDir string) *Runner {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return NewRunner(RunnerOptions{
		FundStore:   stores.funds,
		Performance: stores.performance,
		Filings:     stores.filings,
		Issues:      stores.issues,
		Alerts:      stores.alerts,
		Metrics:     stores.metrics,
		Audit:       stores.audit,
		Rules:       domain.DefaultRuleSet(fixed),
		OutputDir:   outputDir,
		Logger:      logger,
	}).WithClock(func() time.Time { return fixed })
}

// seedCleanAndDefective loads one clean fund and one with a negative size,
// which yields exactly one Critical accuracy issue and its alert.
func seedCleanAndDefective(t *testing.T, stores *testStores) {
	t.Helper()
	ctx := context.Background()

	recent := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	funds := []domain.Fund{
		{
			FundID: "F001", FundName: "Alpha Growth", ManagerName: "Apex Capital",
			FundType: "Private Equity", Strategy: "Buyout", VintageYear: ptr(2020),
			FundSizeUSDMillions: ptr(500.0), OriginalCurrency: "USD", OriginalFundSize: ptr(500.0),
			TargetSizeUSDMillions: ptr(600.0), Status: "Active", Geography: "North America",
			SectorFocus: "Technology", Administrator: ptr("SS&C"), LastUpdated: ptr(recent),
		},
		{
			FundID: "F002", FundName: "Beta Income", ManagerName: "Summit Partners",
			FundType: "Hedge Fund", Strategy: "Macro", VintageYear: ptr(2021),
			FundSizeUSDMillions: ptr(-50.0), OriginalCurrency: "USD", OriginalFundSize: ptr(-50.0),
			TargetSizeUSDMillions: ptr(200.0), Status: "Active", Geography: "Europe",
			SectorFocus: "Diversified", Administrator: ptr("Citco"), LastUpdated: ptr(recent),
		},
	}
	require.NoError(t, stores.funds.ReplaceAll(ctx, funds))
	require.NoError(t, stores.performance.ReplaceAll(ctx, []domain.PerformanceObservation{
		{FundID: "F001", ReportDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), IRRNetPct: ptr(14.2)},
	}))
	require.NoError(t, stores.filings.ReplaceAll(ctx, []domain.RegulatoryFiling{
		{FundID: "F001", FilingType: "Form ADV", FilingDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), ReportedAUMMillions: ptr(500.0)},
	}))
}

func TestRun_FullPipeline(t *testing.T) {
	stores := newTestStores()
	seedCleanAndDefective(t, stores)
	dir := t.TempDir()
	runner := newTestRunner(t, stores, dir)
	ctx := context.Background()

	result, err := runner.Run(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Fingerprint)
	assert.True(t, result.Sufficiency.AllPass)
	assert.Equal(t, 2, result.FundsEvaluated)
	assert.Equal(t, 1, result.Issues)
	assert.Equal(t, 1, result.Alerts)
	assert.Equal(t, 1, result.SeverityCounts[domain.SeverityCritical])
	assert.Greater(t, result.Metrics, 0)
	require.NotNil(t, result.Report)

	issues, err := stores.issues.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.IssueAccuracy, issues[0].IssueType)
	assert.Equal(t, domain.SeverityCritical, issues[0].Severity)
	assert.Equal(t, "F002", issues[0].FundID)

	alerts, err := stores.alerts.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "ALERT-0001", alerts[0].AlertID)
	assert.Equal(t, issues[0].IssueID, alerts[0].IssueID)

	metrics, err := stores.metrics.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.Metrics, len(metrics))

	for _, name := range []string{
		"quality_report.md", "CRITICAL_ALERTS.csv", "quality_issues.csv",
		"quality_metrics.csv", "funds.csv", "fund_performance.csv",
		"executive_summary.csv",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected output %s", name)
	}

	entries, err := stores.audit.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	for _, entry := range entries {
		assert.Equal(t, domain.AuditStatusSuccess, entry.Status)
	}
	// Newest first: report, score, then the two validate entries.
	assert.Equal(t, "report", entries[0].Operation)
	assert.Equal(t, "score", entries[1].Operation)
	assert.Equal(t, "validate", entries[2].Operation)
	assert.Equal(t, "quality_alerts", entries[2].TableName)
	assert.Equal(t, "validate", entries[3].Operation)
	assert.Equal(t, "quality_issues", entries[3].TableName)
}

func TestRun_Deterministic(t *testing.T) {
	stores := newTestStores()
	seedCleanAndDefective(t, stores)
	runner := newTestRunner(t, stores, t.TempDir())
	ctx := context.Background()

	first, err := runner.Run(ctx)
	require.NoError(t, err)
	firstIssues, err := stores.issues.GetAll(ctx)
	require.NoError(t, err)

	second, err := runner.Run(ctx)
	require.NoError(t, err)
	secondIssues, err := stores.issues.GetAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, firstIssues, secondIssues)
}

func TestRun_GateFailurePersistsNothing(t *testing.T) {
	stores := newTestStores()
	dir := t.TempDir()
	runner := newTestRunner(t, stores, dir)
	ctx := context.Background()

	_, err := runner.Run(ctx)
	require.ErrorIs(t, err, ErrInsufficientData)

	issues, err := stores.issues.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, issues)
	metrics, err := stores.metrics.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, metrics)

	entries, err := stores.audit.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sufficiency_gate", entries[0].Operation)
	assert.Equal(t, domain.AuditStatusFailed, entries[0].Status)
	require.NotNil(t, entries[0].ErrorMessage)

	// The gate failure report is still written for inspection.
	_, err = os.Stat(filepath.Join(dir, "quality_report.md"))
	assert.NoError(t, err)
}

func TestRun_DuplicateFundIDsFailGate(t *testing.T) {
	stores := newTestStores()
	seedCleanAndDefective(t, stores)
	ctx := context.Background()

	funds, err := stores.funds.GetAll(ctx)
	require.NoError(t, err)
	funds = append(funds, funds[0])
	require.NoError(t, stores.funds.ReplaceAll(ctx, funds))

	runner := newTestRunner(t, stores, t.TempDir())
	_, err = runner.Run(ctx)
	require.ErrorIs(t, err, ErrInsufficientData)

	issues, err := stores.issues.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestRunValidation_OnlyPersistsIssuesAndAlerts(t *testing.T) {
	stores := newTestStores()
	seedCleanAndDefective(t, stores)
	runner := newTestRunner(t, stores, t.TempDir())
	ctx := context.Background()

	result, err := runner.RunValidation(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Issues)

	metrics, err := stores.metrics.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, metrics, "validation alone must not append metrics")
}

func TestRunScoring_UsesPersistedIssues(t *testing.T) {
	stores := newTestStores()
	seedCleanAndDefective(t, stores)
	runner := newTestRunner(t, stores, t.TempDir())
	ctx := context.Background()

	_, err := runner.RunValidation(ctx)
	require.NoError(t, err)

	result, err := runner.RunScoring(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Issues)
	assert.Greater(t, result.Metrics, 0)

	metrics, err := stores.metrics.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, metrics, result.Metrics)
}
