package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// MetricStore implements storage.MetricStore using ClickHouse.
// quality_metrics is a MergeTree series; every run appends one batch.
type MetricStore struct {
	conn *Conn
}

// NewMetricStore creates a new MetricStore.
func NewMetricStore(conn *Conn) *MetricStore {
	return &MetricStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MetricStore = (*MetricStore)(nil)

// Append adds the given metrics to the time series.
func (s *MetricStore) Append(ctx context.Context, metrics []domain.Metric) error {
	if len(metrics) == 0 {
		return nil
	}
	for i := range metrics {
		if metrics[i].MetricName == "" || !metrics[i].EntityType.IsValid() {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO quality_metrics (
			metric_date, metric_name, metric_value, target_value,
			entity_type, entity_name, calculated_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i := range metrics {
		m := &metrics[i]
		err = batch.Append(
			m.MetricDate,
			m.MetricName,
			m.MetricValue,
			m.TargetValue,
			m.EntityType.String(),
			m.EntityName,
			m.CalculatedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetAll retrieves the whole series, ordered by metric_date, metric_name,
// entity_type, entity_name ASC.
func (s *MetricStore) GetAll(ctx context.Context) ([]domain.Metric, error) {
	query := `
		SELECT metric_date, metric_name, metric_value, target_value,
			entity_type, entity_name, calculated_at
		FROM quality_metrics
		ORDER BY metric_date ASC, metric_name ASC, entity_type ASC, entity_name ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all metrics: %w", err)
	}
	defer rows.Close()

	return scanMetrics(rows)
}

// GetLatestByName retrieves the most recent point per (metric_name,
// entity_type, entity_name) key.
func (s *MetricStore) GetLatestByName(ctx context.Context) ([]domain.Metric, error) {
	query := `
		SELECT metric_date, metric_name, metric_value, target_value,
			entity_type, entity_name, calculated_at
		FROM quality_metrics
		ORDER BY metric_date DESC, calculated_at DESC
		LIMIT 1 BY metric_name, entity_type, entity_name
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get latest metrics: %w", err)
	}
	defer rows.Close()

	return scanMetrics(rows)
}

// scanMetrics scans multiple rows into a slice of Metric.
func scanMetrics(rows driver.Rows) ([]domain.Metric, error) {
	var metrics []domain.Metric

	for rows.Next() {
		var m domain.Metric
		var metricDate, calculatedAt time.Time
		var entityType string
		err := rows.Scan(
			&metricDate,
			&m.MetricName,
			&m.MetricValue,
			&m.TargetValue,
			&entityType,
			&m.EntityName,
			&calculatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan metric row: %w", err)
		}
		m.MetricDate = metricDate.UTC()
		m.CalculatedAt = calculatedAt.UTC()
		m.EntityType = domain.EntityType(entityType)
		metrics = append(metrics, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metric rows: %w", err)
	}
	return metrics, nil
}
