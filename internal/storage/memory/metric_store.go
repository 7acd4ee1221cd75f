package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// MetricStore is an in-memory implementation of storage.MetricStore.
// Append-only; history accumulates across runs like the ClickHouse table.
type MetricStore struct {
	mu   sync.RWMutex
	data []domain.Metric
}

// NewMetricStore creates a new in-memory metric store.
func NewMetricStore() *MetricStore {
	return &MetricStore{}
}

// Append adds the given metrics to the time series.
func (s *MetricStore) Append(_ context.Context, metrics []domain.Metric) error {
	for i := range metrics {
		if metrics[i].MetricName == "" || !metrics[i].EntityType.IsValid() {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append(s.data, metrics...)
	return nil
}

// GetAll retrieves the whole series, ordered by metric_date, metric_name,
// entity_type, entity_name ASC.
func (s *MetricStore) GetAll(_ context.Context) ([]domain.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Metric, len(s.data))
	copy(result, s.data)
	sortMetrics(result)
	return result, nil
}

// GetLatestByName retrieves the most recent point per (metric_name,
// entity_type, entity_name) key.
func (s *MetricStore) GetLatestByName(_ context.Context) ([]domain.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]domain.Metric)
	for _, m := range s.data {
		key := metricKey(m)
		prev, ok := latest[key]
		if !ok || m.MetricDate.After(prev.MetricDate) ||
			(m.MetricDate.Equal(prev.MetricDate) && m.CalculatedAt.After(prev.CalculatedAt)) {
			latest[key] = m
		}
	}

	result := make([]domain.Metric, 0, len(latest))
	for _, m := range latest {
		result = append(result, m)
	}
	sortMetrics(result)
	return result, nil
}

func metricKey(m domain.Metric) string {
	return fmt.Sprintf("%s|%s|%s", m.MetricName, m.EntityType, m.EntityName)
}

func sortMetrics(metrics []domain.Metric) {
	sort.Slice(metrics, func(i, j int) bool {
		if !metrics[i].MetricDate.Equal(metrics[j].MetricDate) {
			return metrics[i].MetricDate.Before(metrics[j].MetricDate)
		}
		if metrics[i].MetricName != metrics[j].MetricName {
			return metrics[i].MetricName < metrics[j].MetricName
		}
		if metrics[i].EntityType != metrics[j].EntityType {
			return metrics[i].EntityType < metrics[j].EntityType
		}
		return metrics[i].EntityName < metrics[j].EntityName
	})
}

var _ storage.MetricStore = (*MetricStore)(nil)
