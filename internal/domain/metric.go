package domain

import "time"

// EntityType is the granularity a quality metric is computed at.
type EntityType string

const (
	EntitySystem   EntityType = "System"
	EntityFundType EntityType = "Fund Type"
	EntityManager  EntityType = "Manager"
)

// String returns the string representation of EntityType.
func (e EntityType) String() string {
	return string(e)
}

// IsValid checks if the entity type is a valid value.
func (e EntityType) IsValid() bool {
	return e == EntitySystem || e == EntityFundType || e == EntityManager
}

// Metric is one point of the quality metric time series. Corresponds to the
// quality_metrics table in ClickHouse; rows are appended per run, never
// replaced, keyed by (metric_date, metric_name, entity_type, entity_name).
type Metric struct {
	MetricDate   time.Time // date of the run, day precision
	MetricName   string    // e.g. "Completeness Score"
	MetricValue  float64   // rounded to 2 decimals at generation
	TargetValue  *float64  // nullable, e.g. tier metrics carry no target
	EntityType   EntityType
	EntityName   string // "Overall", a fund type, or a manager name
	CalculatedAt time.Time
}

// Metric names produced by the scoring engine.
const (
	MetricCompleteness   = "Completeness Score"
	MetricAccuracy       = "Accuracy Score"
	MetricTimeliness     = "Timeliness Score"
	MetricManagerQuality = "Manager Quality Score"
	MetricManagerTier    = "Manager Quality Tier"
	MetricOverall        = "Overall Data Quality Score"
	MetricTotalIssues    = "Total Issues"
)

// EntityNameSystem is the entity name used for system-wide metrics.
const EntityNameSystem = "Overall"
