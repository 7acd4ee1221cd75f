package memory

import (
	"context"
	"sort"
	"sync"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// PerformanceStore is an in-memory implementation of storage.PerformanceStore.
type PerformanceStore struct {
	mu   sync.RWMutex
	data []domain.PerformanceObservation
}

// NewPerformanceStore creates a new in-memory performance store.
func NewPerformanceStore() *PerformanceStore {
	return &PerformanceStore{}
}

// ReplaceAll replaces the whole collection with the given records.
func (s *PerformanceStore) ReplaceAll(_ context.Context, observations []domain.PerformanceObservation) error {
	for i := range observations {
		if observations[i].FundID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]domain.PerformanceObservation, len(observations))
	copy(s.data, observations)
	return nil
}

// GetAll retrieves all observations, ordered by fund_id, report_date ASC.
func (s *PerformanceStore) GetAll(_ context.Context) ([]domain.PerformanceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.PerformanceObservation, len(s.data))
	copy(result, s.data)
	sortObservations(result)
	return result, nil
}

// GetByFundID retrieves all observations for a fund, ordered by report_date ASC.
func (s *PerformanceStore) GetByFundID(_ context.Context, fundID string) ([]domain.PerformanceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PerformanceObservation
	for i := range s.data {
		if s.data[i].FundID == fundID {
			result = append(result, s.data[i])
		}
	}
	sortObservations(result)
	return result, nil
}

func sortObservations(obs []domain.PerformanceObservation) {
	sort.Slice(obs, func(i, j int) bool {
		if obs[i].FundID != obs[j].FundID {
			return obs[i].FundID < obs[j].FundID
		}
		return obs[i].ReportDate.Before(obs[j].ReportDate)
	})
}

var _ storage.PerformanceStore = (*PerformanceStore)(nil)
