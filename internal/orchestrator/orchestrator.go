// Package orchestrator re-invokes the bounded pipeline run on an interval.
// Each invocation is the same batch run the CLI performs; the scheduler adds
// no streaming semantics.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"fund-quality-engine/internal/ingestion"
	"fund-quality-engine/internal/observability"
	"fund-quality-engine/internal/pipeline"
)

// Scheduler runs the pipeline periodically until stopped.
type Scheduler struct {
	ingest   *ingestion.Runner // optional, nil skips the ingest phase
	paths    ingestion.Paths
	pipeline *pipeline.Runner
	interval time.Duration
	metrics  *observability.Metrics // optional
	logger   *logrus.Logger

	stopOnce sync.Once
	stop     chan struct{}

	now func() time.Time
}

// Options contains configuration for creating a Scheduler.
type Options struct {
	Ingest   *ingestion.Runner
	Paths    ingestion.Paths
	Pipeline *pipeline.Runner
	Interval time.Duration
	Metrics  *observability.Metrics
	Logger   *logrus.Logger
}

// New creates a scheduler. The pipeline runner is required; the ingestion
// runner is optional for deployments where ingestion happens out of band.
func New(opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		ingest:   opts.Ingest,
		paths:    opts.Paths,
		pipeline: opts.Pipeline,
		interval: opts.Interval,
		metrics:  opts.Metrics,
		logger:   logger,
		stop:     make(chan struct{}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock, used for the success timestamp metric.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Run executes one run immediately, then once per interval, until the
// context is cancelled or Stop is called. Run failures are logged and the
// schedule continues; only cancellation ends the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop ends the schedule after any in-flight run completes. Safe to call
// more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// RunOnce performs a single scheduled invocation outside the loop, for
// one-shot triggering.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.runOnce(ctx)
}

func (s *Scheduler) runOnce(ctx context.Context) error {
	start := s.now()

	if s.ingest != nil {
		stats, err := s.ingest.Run(ctx, s.paths)
		if err != nil {
			s.observeFailure(start)
			s.logger.WithError(err).Error("scheduled ingestion failed")
			return err
		}
		if s.metrics != nil {
			s.metrics.SetRecordsIngested("funds", stats.FundsIngested)
			s.metrics.SetRecordsIngested("fund_performance", stats.PerformanceIngested)
			s.metrics.SetRecordsIngested("regulatory_filings", stats.FilingsIngested)
		}
	}

	result, err := s.pipeline.Run(ctx)
	if err != nil {
		s.observeFailure(start)
		s.logger.WithError(err).Error("scheduled run failed")
		return err
	}

	finished := s.now()
	if s.metrics != nil {
		s.metrics.RecordRun(observability.StatusSuccess, finished.Sub(start))
		s.metrics.SetIssueCounts(result.SeverityCounts)
		s.metrics.SetAlertsRaised(result.Alerts)
		s.metrics.MarkSuccess(finished)
	}

	s.logger.WithFields(logrus.Fields{
		"fingerprint": result.Fingerprint,
		"funds":       result.FundsEvaluated,
		"issues":      result.Issues,
		"alerts":      result.Alerts,
		"metrics":     result.Metrics,
		"duration_ms": finished.Sub(start).Milliseconds(),
	}).Info("scheduled run complete")

	return nil
}

func (s *Scheduler) observeFailure(start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordRun(observability.StatusFailed, s.now().Sub(start))
	}
}
