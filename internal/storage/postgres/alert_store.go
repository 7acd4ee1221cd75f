package postgres

import (
	"context"
	"fmt"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL.
type AlertStore struct {
	pool *Pool
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

// ReplaceAll replaces the prior run's alerts with the given set atomically.
func (s *AlertStore) ReplaceAll(ctx context.Context, alerts []domain.Alert) error {
	for i := range alerts {
		if alerts[i].AlertID == "" || alerts[i].IssueID <= 0 {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM quality_alerts`); err != nil {
		return fmt.Errorf("clear quality_alerts: %w", err)
	}

	query := `
		INSERT INTO quality_alerts (
			alert_id, issue_id, fund_id, issue_type, severity, field_name,
			expected_value, actual_value, description, created_at, acknowledged
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for i := range alerts {
		a := &alerts[i]
		_, err := tx.Exec(ctx, query,
			a.AlertID,
			a.IssueID,
			a.FundID,
			a.IssueType.String(),
			a.Severity.String(),
			a.FieldName,
			a.ExpectedValue,
			a.ActualValue,
			a.Description,
			a.CreatedAt,
			a.Acknowledged,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert alert %s: %w", a.AlertID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves all alerts, ordered by alert_id ASC.
func (s *AlertStore) GetAll(ctx context.Context) ([]domain.Alert, error) {
	query := `
		SELECT alert_id, issue_id, fund_id, issue_type, severity, field_name,
			expected_value, actual_value, description, created_at, acknowledged
		FROM quality_alerts
		ORDER BY alert_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert
	for rows.Next() {
		var a domain.Alert
		var issueType, severity string
		err := rows.Scan(
			&a.AlertID,
			&a.IssueID,
			&a.FundID,
			&issueType,
			&severity,
			&a.FieldName,
			&a.ExpectedValue,
			&a.ActualValue,
			&a.Description,
			&a.CreatedAt,
			&a.Acknowledged,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		a.IssueType = domain.IssueType(issueType)
		a.Severity = domain.Severity(severity)
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}
	return alerts, nil
}
