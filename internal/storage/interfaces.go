package storage

import (
	"context"

	"fund-quality-engine/internal/domain"
)

// FundStore provides access to the standardized fund master.
type FundStore interface {
	// ReplaceAll replaces the whole collection with the given records.
	ReplaceAll(ctx context.Context, funds []domain.Fund) error

	// GetAll retrieves all funds, ordered by fund_id ASC.
	GetAll(ctx context.Context) ([]domain.Fund, error)

	// GetByID retrieves one fund. Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, fundID string) (*domain.Fund, error)
}

// PerformanceStore provides access to standardized performance observations.
type PerformanceStore interface {
	// ReplaceAll replaces the whole collection with the given records.
	ReplaceAll(ctx context.Context, observations []domain.PerformanceObservation) error

	// GetAll retrieves all observations, ordered by fund_id, report_date ASC.
	GetAll(ctx context.Context) ([]domain.PerformanceObservation, error)

	// GetByFundID retrieves all observations for a fund, ordered by report_date ASC.
	GetByFundID(ctx context.Context, fundID string) ([]domain.PerformanceObservation, error)
}

// FilingStore provides access to regulatory filings.
type FilingStore interface {
	// ReplaceAll replaces the whole collection with the given records.
	ReplaceAll(ctx context.Context, filings []domain.RegulatoryFiling) error

	// GetAll retrieves all filings in their ingested order.
	GetAll(ctx context.Context) ([]domain.RegulatoryFiling, error)
}

// IssueStore provides access to quality issues. A validation run replaces
// the prior run's issue set in a single transaction.
type IssueStore interface {
	// ReplaceAll replaces the prior run's issues with the given set.
	ReplaceAll(ctx context.Context, issues []domain.Issue) error

	// GetAll retrieves all issues, ordered by issue_id ASC.
	GetAll(ctx context.Context) ([]domain.Issue, error)

	// GetBySeverity retrieves issues of one severity, ordered by issue_id ASC.
	GetBySeverity(ctx context.Context, severity domain.Severity) ([]domain.Issue, error)
}

// AlertStore provides access to critical alerts. Replaced alongside issues.
type AlertStore interface {
	// ReplaceAll replaces the prior run's alerts with the given set.
	ReplaceAll(ctx context.Context, alerts []domain.Alert) error

	// GetAll retrieves all alerts, ordered by alert_id ASC.
	GetAll(ctx context.Context) ([]domain.Alert, error)
}

// MetricStore provides access to the quality metric time series.
// Metrics are append-only: each run adds points, history is never replaced.
type MetricStore interface {
	// Append adds the given metrics to the time series.
	Append(ctx context.Context, metrics []domain.Metric) error

	// GetAll retrieves the whole series, ordered by metric_date, metric_name,
	// entity_type, entity_name ASC.
	GetAll(ctx context.Context) ([]domain.Metric, error)

	// GetLatestByName retrieves the most recent point per (metric_name,
	// entity_type, entity_name) key.
	GetLatestByName(ctx context.Context) ([]domain.Metric, error)
}

// AuditStore records pipeline operations, append-only.
type AuditStore interface {
	// Append adds one audit entry. The store assigns the entry id.
	Append(ctx context.Context, entry *domain.AuditEntry) error

	// GetRecent retrieves the most recent entries, newest first.
	GetRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}
