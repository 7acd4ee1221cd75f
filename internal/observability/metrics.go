// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fund-quality-engine/internal/domain"
)

// Run status label values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Metrics holds all Prometheus metrics for the engine. Per-run quantities
// (issues, alerts, ingested records) are gauges reflecting the latest run;
// runs and durations accumulate.
type Metrics struct {
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	IssuesFound     *prometheus.GaugeVec
	AlertsRaised    prometheus.Gauge
	RecordsIngested *prometheus.GaugeVec

	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a Metrics instance registered on the given registerer.
// A nil registerer uses the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "fund_quality"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	auto := promauto.With(reg)

	return &Metrics{
		RunsTotal: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		RunDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Pipeline run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),

		IssuesFound: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "issues_found",
			Help:      "Quality issues found in the latest run by severity",
		}, []string{"severity"}),
		AlertsRaised: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "alerts_raised",
			Help:      "Critical alerts raised in the latest run",
		}),
		RecordsIngested: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_ingested",
			Help:      "Records ingested in the latest run by table",
		}, []string{"table"}),

		LastSuccessfulRun: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last successful pipeline run",
		}),
	}
}

// RecordRun records one run outcome with its duration.
func (m *Metrics) RecordRun(status string, duration time.Duration) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(duration.Seconds())
}

// SetIssueCounts publishes the latest run's issue counts. Severities absent
// from the map reset to zero so stale values never linger.
func (m *Metrics) SetIssueCounts(counts map[domain.Severity]int) {
	for _, severity := range domain.SeverityOrder {
		m.IssuesFound.WithLabelValues(severity.String()).Set(float64(counts[severity]))
	}
}

// SetAlertsRaised publishes the latest run's alert count.
func (m *Metrics) SetAlertsRaised(count int) {
	m.AlertsRaised.Set(float64(count))
}

// SetRecordsIngested publishes the latest ingestion's row count for a table.
func (m *Metrics) SetRecordsIngested(table string, count int) {
	m.RecordsIngested.WithLabelValues(table).Set(float64(count))
}

// MarkSuccess stamps the last successful run time.
func (m *Metrics) MarkSuccess(t time.Time) {
	m.LastSuccessfulRun.Set(float64(t.Unix()))
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
