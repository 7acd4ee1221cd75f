package memory

import (
	"context"
	"sort"
	"sync"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// FundStore is an in-memory implementation of storage.FundStore.
// Records are held as a slice, not a map: an ingested file may carry
// duplicate fund_ids and those must survive until the sufficiency gate
// inspects the snapshot.
type FundStore struct {
	mu    sync.RWMutex
	funds []domain.Fund
}

// NewFundStore creates a new in-memory fund store.
func NewFundStore() *FundStore {
	return &FundStore{}
}

// ReplaceAll replaces the whole collection with the given records.
func (s *FundStore) ReplaceAll(_ context.Context, funds []domain.Fund) error {
	for i := range funds {
		if funds[i].FundID == "" {
			return storage.ErrInvalidInput
		}
	}

	next := make([]domain.Fund, len(funds))
	copy(next, funds)
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].FundID < next[j].FundID
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.funds = next
	return nil
}

// GetAll retrieves all funds, ordered by fund_id ASC.
func (s *FundStore) GetAll(_ context.Context) ([]domain.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Fund, len(s.funds))
	copy(result, s.funds)
	return result, nil
}

// GetByID retrieves one fund. Returns ErrNotFound if it does not exist.
func (s *FundStore) GetByID(_ context.Context, fundID string) (*domain.Fund, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.funds {
		if s.funds[i].FundID == fundID {
			fund := s.funds[i]
			return &fund, nil
		}
	}
	return nil, storage.ErrNotFound
}

var _ storage.FundStore = (*FundStore)(nil)
