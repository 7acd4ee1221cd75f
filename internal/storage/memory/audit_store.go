package memory

import (
	"context"
	"sync"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// AuditStore is an in-memory implementation of storage.AuditStore.
type AuditStore struct {
	mu     sync.RWMutex
	data   []domain.AuditEntry
	nextID int64
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{nextID: 1}
}

// Append adds one audit entry. The store assigns the entry id.
func (s *AuditStore) Append(_ context.Context, entry *domain.AuditEntry) error {
	if entry == nil || entry.Operation == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.nextID
	s.nextID++
	s.data = append(s.data, *entry)
	return nil
}

// GetRecent retrieves the most recent entries, newest first.
func (s *AuditStore) GetRecent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.data)
	if limit > n {
		limit = n
	}

	result := make([]domain.AuditEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, s.data[i])
	}
	return result, nil
}

var _ storage.AuditStore = (*AuditStore)(nil)
