package memory

import (
	"context"
	"sort"
	"sync"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// AlertStore is an in-memory implementation of storage.AlertStore.
type AlertStore struct {
	mu   sync.RWMutex
	data []domain.Alert
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{}
}

// ReplaceAll replaces the prior run's alerts with the given set.
func (s *AlertStore) ReplaceAll(_ context.Context, alerts []domain.Alert) error {
	for i := range alerts {
		if alerts[i].AlertID == "" || alerts[i].IssueID <= 0 {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]domain.Alert, len(alerts))
	copy(s.data, alerts)
	return nil
}

// GetAll retrieves all alerts, ordered by alert_id ASC.
func (s *AlertStore) GetAll(_ context.Context) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Alert, len(s.data))
	copy(result, s.data)
	sort.Slice(result, func(i, j int) bool {
		return result[i].AlertID < result[j].AlertID
	})
	return result, nil
}

var _ storage.AlertStore = (*AlertStore)(nil)
