package postgres

import (
	"context"
	"fmt"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// AuditStore implements storage.AuditStore using PostgreSQL.
type AuditStore struct {
	pool *Pool
}

// NewAuditStore creates a new AuditStore.
func NewAuditStore(pool *Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AuditStore = (*AuditStore)(nil)

// Append adds one audit entry. The database assigns the entry id.
func (s *AuditStore) Append(ctx context.Context, entry *domain.AuditEntry) error {
	if entry == nil || entry.Operation == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO audit_log (
			logged_at, operation, table_name, records_affected, duration_ms, status, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		entry.LoggedAt,
		entry.Operation,
		entry.TableName,
		entry.RecordsAffected,
		entry.DurationMs,
		entry.Status,
		entry.ErrorMessage,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// GetRecent retrieves the most recent entries, newest first.
func (s *AuditStore) GetRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT id, logged_at, operation, table_name, records_affected, duration_ms, status, error_message
		FROM audit_log
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		err := rows.Scan(
			&e.ID,
			&e.LoggedAt,
			&e.Operation,
			&e.TableName,
			&e.RecordsAffected,
			&e.DurationMs,
			&e.Status,
			&e.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}
	return entries, nil
}
