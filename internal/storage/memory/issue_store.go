package memory

import (
	"context"
	"sort"
	"sync"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// IssueStore is an in-memory implementation of storage.IssueStore.
type IssueStore struct {
	mu   sync.RWMutex
	data []domain.Issue
}

// NewIssueStore creates a new in-memory issue store.
func NewIssueStore() *IssueStore {
	return &IssueStore{}
}

// ReplaceAll replaces the prior run's issues with the given set.
func (s *IssueStore) ReplaceAll(_ context.Context, issues []domain.Issue) error {
	for i := range issues {
		if issues[i].IssueID <= 0 || !issues[i].Severity.IsValid() {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]domain.Issue, len(issues))
	copy(s.data, issues)
	return nil
}

// GetAll retrieves all issues, ordered by issue_id ASC.
func (s *IssueStore) GetAll(_ context.Context) ([]domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Issue, len(s.data))
	copy(result, s.data)
	sort.Slice(result, func(i, j int) bool {
		return result[i].IssueID < result[j].IssueID
	})
	return result, nil
}

// GetBySeverity retrieves issues of one severity, ordered by issue_id ASC.
func (s *IssueStore) GetBySeverity(_ context.Context, severity domain.Severity) ([]domain.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Issue
	for i := range s.data {
		if s.data[i].Severity == severity {
			result = append(result, s.data[i])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].IssueID < result[j].IssueID
	})
	return result, nil
}

var _ storage.IssueStore = (*IssueStore)(nil)
