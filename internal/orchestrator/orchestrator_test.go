package orchestrator

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/observability"
	"fund-quality-engine/internal/pipeline"
	"fund-quality-engine/internal/storage/memory"
)

func ptr[T any](v T) *T { return &v }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func seededPipeline(t *testing.T) *pipeline.Runner {
	t.Helper()
	ctx := context.Background()

	funds := memory.NewFundStore()
	recent := time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, funds.ReplaceAll(ctx, []domain.Fund{
		{
			FundID: "F001", FundName: "Alpha Growth", ManagerName: "Apex Capital",
			FundType: "Private Equity", Strategy: "Buyout", VintageYear: ptr(2020),
			FundSizeUSDMillions: ptr(500.0), OriginalCurrency: "USD",
			TargetSizeUSDMillions: ptr(600.0), Status: "Active", Geography: "North America",
			SectorFocus: "Technology", Administrator: ptr("SS&C"), LastUpdated: ptr(recent),
		},
		{
			FundID: "F002", FundName: "Beta Income", ManagerName: "Summit Partners",
			FundType: "Hedge Fund", Strategy: "Macro", VintageYear: ptr(2021),
			FundSizeUSDMillions: ptr(-50.0), OriginalCurrency: "USD",
			TargetSizeUSDMillions: ptr(200.0), Status: "Active", Geography: "Europe",
			SectorFocus: "Diversified", Administrator: ptr("Citco"), LastUpdated: ptr(recent),
		},
	}))

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return pipeline.NewRunner(pipeline.RunnerOptions{
		FundStore:   funds,
		Performance: memory.NewPerformanceStore(),
		Filings:     memory.NewFilingStore(),
		Issues:      memory.NewIssueStore(),
		Alerts:      memory.NewAlertStore(),
		Metrics:     memory.NewMetricStore(),
		Audit:       memory.NewAuditStore(),
		Rules:       domain.DefaultRuleSet(fixed),
		OutputDir:   t.TempDir(),
		Logger:      quietLogger(),
	}).WithClock(func() time.Time { return fixed })
}

func TestScheduler_RunOnceRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)

	sched := New(Options{
		Pipeline: seededPipeline(t),
		Interval: time.Hour,
		Metrics:  metrics,
		Logger:   quietLogger(),
	})

	require.NoError(t, sched.RunOnce(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues(observability.StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.IssuesFound.WithLabelValues("Critical")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.IssuesFound.WithLabelValues("Low")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AlertsRaised))
	assert.Greater(t, testutil.ToFloat64(metrics.LastSuccessfulRun), 0.0)
}

func TestScheduler_RunOnceFailureCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics("test", reg)

	// An empty fund store fails the sufficiency gate.
	empty := pipeline.NewRunner(pipeline.RunnerOptions{
		FundStore:   memory.NewFundStore(),
		Performance: memory.NewPerformanceStore(),
		Filings:     memory.NewFilingStore(),
		Issues:      memory.NewIssueStore(),
		Alerts:      memory.NewAlertStore(),
		Metrics:     memory.NewMetricStore(),
		Audit:       memory.NewAuditStore(),
		Rules:       domain.DefaultRuleSet(time.Now().UTC()),
		OutputDir:   t.TempDir(),
		Logger:      quietLogger(),
	})

	sched := New(Options{
		Pipeline: empty,
		Interval: time.Hour,
		Metrics:  metrics,
		Logger:   quietLogger(),
	})

	err := sched.RunOnce(context.Background())
	require.ErrorIs(t, err, pipeline.ErrInsufficientData)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues(observability.StatusFailed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.LastSuccessfulRun))
}

func TestScheduler_StopEndsLoop(t *testing.T) {
	sched := New(Options{
		Pipeline: seededPipeline(t),
		Interval: time.Hour,
		Logger:   quietLogger(),
	})

	done := make(chan error, 1)
	go func() { done <- sched.Run(context.Background()) }()

	// Stop is safe to call repeatedly and ends the loop without error.
	sched.Stop()
	sched.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_ContextCancelEndsLoop(t *testing.T) {
	sched := New(Options{
		Pipeline: seededPipeline(t),
		Interval: time.Hour,
		Logger:   quietLogger(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}
}
