package memory

import (
	"context"
	"sync"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// FilingStore is an in-memory implementation of storage.FilingStore.
// Filings keep their ingested order; cross-source checks depend on it.
type FilingStore struct {
	mu   sync.RWMutex
	data []domain.RegulatoryFiling
}

// NewFilingStore creates a new in-memory filing store.
func NewFilingStore() *FilingStore {
	return &FilingStore{}
}

// ReplaceAll replaces the whole collection with the given records.
func (s *FilingStore) ReplaceAll(_ context.Context, filings []domain.RegulatoryFiling) error {
	for i := range filings {
		if filings[i].FundID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]domain.RegulatoryFiling, len(filings))
	copy(s.data, filings)
	return nil
}

// GetAll retrieves all filings in their ingested order.
func (s *FilingStore) GetAll(_ context.Context) ([]domain.RegulatoryFiling, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.RegulatoryFiling, len(s.data))
	copy(result, s.data)
	return result, nil
}

var _ storage.FilingStore = (*FilingStore)(nil)
