package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// IssueStore implements storage.IssueStore using PostgreSQL.
type IssueStore struct {
	pool *Pool
}

// NewIssueStore creates a new IssueStore.
func NewIssueStore(pool *Pool) *IssueStore {
	return &IssueStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IssueStore = (*IssueStore)(nil)

// ReplaceAll replaces the prior run's issues with the given set atomically.
func (s *IssueStore) ReplaceAll(ctx context.Context, issues []domain.Issue) error {
	for i := range issues {
		if issues[i].IssueID <= 0 || !issues[i].Severity.IsValid() {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM quality_issues`); err != nil {
		return fmt.Errorf("clear quality_issues: %w", err)
	}

	query := `
		INSERT INTO quality_issues (
			issue_id, fund_id, issue_type, severity, field_name,
			expected_value, actual_value, description, detected_at, status, resolution
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for i := range issues {
		iss := &issues[i]
		_, err := tx.Exec(ctx, query,
			iss.IssueID,
			iss.FundID,
			iss.IssueType.String(),
			iss.Severity.String(),
			iss.FieldName,
			iss.ExpectedValue,
			iss.ActualValue,
			iss.Description,
			iss.DetectedAt,
			iss.Status,
			iss.Resolution,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert issue %d: %w", iss.IssueID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves all issues, ordered by issue_id ASC.
func (s *IssueStore) GetAll(ctx context.Context) ([]domain.Issue, error) {
	query := issueSelectColumns + ` FROM quality_issues ORDER BY issue_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all issues: %w", err)
	}
	defer rows.Close()

	return scanIssues(rows)
}

// GetBySeverity retrieves issues of one severity, ordered by issue_id ASC.
func (s *IssueStore) GetBySeverity(ctx context.Context, severity domain.Severity) ([]domain.Issue, error) {
	if !severity.IsValid() {
		return nil, storage.ErrInvalidInput
	}

	query := issueSelectColumns + `
		FROM quality_issues
		WHERE severity = $1
		ORDER BY issue_id ASC`

	rows, err := s.pool.Query(ctx, query, severity.String())
	if err != nil {
		return nil, fmt.Errorf("get issues by severity: %w", err)
	}
	defer rows.Close()

	return scanIssues(rows)
}

const issueSelectColumns = `
	SELECT issue_id, fund_id, issue_type, severity, field_name,
		expected_value, actual_value, description, detected_at, status, resolution`

// scanIssues scans multiple rows into a slice of Issue.
func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var issues []domain.Issue

	for rows.Next() {
		var iss domain.Issue
		var issueType, severity string
		err := rows.Scan(
			&iss.IssueID,
			&iss.FundID,
			&issueType,
			&severity,
			&iss.FieldName,
			&iss.ExpectedValue,
			&iss.ActualValue,
			&iss.Description,
			&iss.DetectedAt,
			&iss.Status,
			&iss.Resolution,
		)
		if err != nil {
			return nil, fmt.Errorf("scan issue row: %w", err)
		}
		iss.IssueType = domain.IssueType(issueType)
		iss.Severity = domain.Severity(severity)
		issues = append(issues, iss)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate issue rows: %w", err)
	}
	return issues, nil
}
