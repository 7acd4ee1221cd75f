package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// FilingStore implements storage.FilingStore using PostgreSQL.
type FilingStore struct {
	pool *Pool
}

// NewFilingStore creates a new FilingStore.
func NewFilingStore(pool *Pool) *FilingStore {
	return &FilingStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FilingStore = (*FilingStore)(nil)

// ReplaceAll replaces the whole regulatory_filings table atomically.
func (s *FilingStore) ReplaceAll(ctx context.Context, filings []domain.RegulatoryFiling) error {
	for i := range filings {
		if filings[i].FundID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM regulatory_filings`); err != nil {
		return fmt.Errorf("clear regulatory_filings: %w", err)
	}

	query := `
		INSERT INTO regulatory_filings (
			fund_id, filing_type, filing_date, reported_aum_millions,
			reported_strategy, num_investors, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for i := range filings {
		f := &filings[i]
		_, err := tx.Exec(ctx, query,
			f.FundID,
			f.FilingType,
			f.FilingDate,
			f.ReportedAUMMillions,
			f.ReportedStrategy,
			f.NumInvestors,
			f.Source,
		)
		if err != nil {
			return fmt.Errorf("insert filing for %s: %w", f.FundID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves all filings in their ingested order.
func (s *FilingStore) GetAll(ctx context.Context) ([]domain.RegulatoryFiling, error) {
	query := `
		SELECT fund_id, filing_type, filing_date, reported_aum_millions,
			reported_strategy, num_investors, source
		FROM regulatory_filings
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all filings: %w", err)
	}
	defer rows.Close()

	return scanFilings(rows)
}

// scanFilings scans multiple rows into a slice of RegulatoryFiling.
func scanFilings(rows pgx.Rows) ([]domain.RegulatoryFiling, error) {
	var filings []domain.RegulatoryFiling

	for rows.Next() {
		var f domain.RegulatoryFiling
		err := rows.Scan(
			&f.FundID,
			&f.FilingType,
			&f.FilingDate,
			&f.ReportedAUMMillions,
			&f.ReportedStrategy,
			&f.NumInvestors,
			&f.Source,
		)
		if err != nil {
			return nil, fmt.Errorf("scan filing row: %w", err)
		}
		filings = append(filings, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filing rows: %w", err)
	}
	return filings, nil
}
