package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// FundStore implements storage.FundStore using PostgreSQL.
type FundStore struct {
	pool *Pool
}

// NewFundStore creates a new FundStore.
func NewFundStore(pool *Pool) *FundStore {
	return &FundStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FundStore = (*FundStore)(nil)

// ReplaceAll replaces the whole funds table with the given records atomically.
func (s *FundStore) ReplaceAll(ctx context.Context, funds []domain.Fund) error {
	for i := range funds {
		if funds[i].FundID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM funds`); err != nil {
		return fmt.Errorf("clear funds: %w", err)
	}

	query := `
		INSERT INTO funds (
			fund_id, fund_name, manager_name, fund_type, strategy,
			vintage_year, inception_date, fund_size_usd_millions,
			original_currency, original_fund_size, target_size_usd_millions,
			status, geography, sector_focus, administrator, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	for i := range funds {
		f := &funds[i]
		_, err := tx.Exec(ctx, query,
			f.FundID,
			f.FundName,
			f.ManagerName,
			f.FundType,
			f.Strategy,
			f.VintageYear,
			f.InceptionDate,
			f.FundSizeUSDMillions,
			f.OriginalCurrency,
			f.OriginalFundSize,
			f.TargetSizeUSDMillions,
			f.Status,
			f.Geography,
			f.SectorFocus,
			f.Administrator,
			f.LastUpdated,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert fund %s: %w", f.FundID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves all funds, ordered by fund_id ASC.
func (s *FundStore) GetAll(ctx context.Context) ([]domain.Fund, error) {
	query := fundSelectColumns + ` FROM funds ORDER BY fund_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all funds: %w", err)
	}
	defer rows.Close()

	return scanFunds(rows)
}

// GetByID retrieves one fund. Returns ErrNotFound if it does not exist.
func (s *FundStore) GetByID(ctx context.Context, fundID string) (*domain.Fund, error) {
	query := fundSelectColumns + ` FROM funds WHERE fund_id = $1`

	row := s.pool.QueryRow(ctx, query, fundID)

	fund, err := scanFund(row)
	if err != nil {
		if isNoRows(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get fund by id: %w", err)
	}
	return fund, nil
}

const fundSelectColumns = `
	SELECT fund_id, fund_name, manager_name, fund_type, strategy,
		vintage_year, inception_date, fund_size_usd_millions,
		original_currency, original_fund_size, target_size_usd_millions,
		status, geography, sector_focus, administrator, last_updated`

// scanFund scans a single row into a Fund.
func scanFund(row pgx.Row) (*domain.Fund, error) {
	var f domain.Fund
	err := row.Scan(
		&f.FundID,
		&f.FundName,
		&f.ManagerName,
		&f.FundType,
		&f.Strategy,
		&f.VintageYear,
		&f.InceptionDate,
		&f.FundSizeUSDMillions,
		&f.OriginalCurrency,
		&f.OriginalFundSize,
		&f.TargetSizeUSDMillions,
		&f.Status,
		&f.Geography,
		&f.SectorFocus,
		&f.Administrator,
		&f.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// scanFunds scans multiple rows into a slice of Fund.
func scanFunds(rows pgx.Rows) ([]domain.Fund, error) {
	var funds []domain.Fund

	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fund row: %w", err)
		}
		funds = append(funds, *fund)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fund rows: %w", err)
	}
	return funds, nil
}
