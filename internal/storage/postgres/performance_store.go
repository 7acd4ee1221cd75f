package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// PerformanceStore implements storage.PerformanceStore using PostgreSQL.
type PerformanceStore struct {
	pool *Pool
}

// NewPerformanceStore creates a new PerformanceStore.
func NewPerformanceStore(pool *Pool) *PerformanceStore {
	return &PerformanceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PerformanceStore = (*PerformanceStore)(nil)

// ReplaceAll replaces the whole fund_performance table atomically.
func (s *PerformanceStore) ReplaceAll(ctx context.Context, observations []domain.PerformanceObservation) error {
	for i := range observations {
		if observations[i].FundID == "" {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM fund_performance`); err != nil {
		return fmt.Errorf("clear fund_performance: %w", err)
	}

	query := `
		INSERT INTO fund_performance (
			fund_id, report_date, report_quarter, irr_net_pct, moic, dpi, rvpi,
			tvpi, tvpi_calculated, capital_called_millions, distributions_millions,
			remaining_value_millions, nav_per_share, monthly_return_pct
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for i := range observations {
		o := &observations[i]
		_, err := tx.Exec(ctx, query,
			o.FundID,
			o.ReportDate,
			o.ReportQuarter,
			o.IRRNetPct,
			o.MOIC,
			o.DPI,
			o.RVPI,
			o.TVPI,
			o.TVPICalculated,
			o.CapitalCalledMillions,
			o.DistributionsMillions,
			o.RemainingValueMillions,
			o.NAVPerShare,
			o.MonthlyReturnPct,
		)
		if err != nil {
			return fmt.Errorf("insert performance for %s: %w", o.FundID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves all observations, ordered by fund_id, report_date ASC.
func (s *PerformanceStore) GetAll(ctx context.Context) ([]domain.PerformanceObservation, error) {
	query := performanceSelectColumns + `
		FROM fund_performance
		ORDER BY fund_id ASC, report_date ASC, id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all performance: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// GetByFundID retrieves all observations for a fund, ordered by report_date ASC.
func (s *PerformanceStore) GetByFundID(ctx context.Context, fundID string) ([]domain.PerformanceObservation, error) {
	query := performanceSelectColumns + `
		FROM fund_performance
		WHERE fund_id = $1
		ORDER BY report_date ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, fundID)
	if err != nil {
		return nil, fmt.Errorf("get performance by fund id: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

const performanceSelectColumns = `
	SELECT fund_id, report_date, report_quarter, irr_net_pct, moic, dpi, rvpi,
		tvpi, tvpi_calculated, capital_called_millions, distributions_millions,
		remaining_value_millions, nav_per_share, monthly_return_pct`

// scanObservations scans multiple rows into a slice of PerformanceObservation.
func scanObservations(rows pgx.Rows) ([]domain.PerformanceObservation, error) {
	var observations []domain.PerformanceObservation

	for rows.Next() {
		var o domain.PerformanceObservation
		err := rows.Scan(
			&o.FundID,
			&o.ReportDate,
			&o.ReportQuarter,
			&o.IRRNetPct,
			&o.MOIC,
			&o.DPI,
			&o.RVPI,
			&o.TVPI,
			&o.TVPICalculated,
			&o.CapitalCalledMillions,
			&o.DistributionsMillions,
			&o.RemainingValueMillions,
			&o.NAVPerShare,
			&o.MonthlyReturnPct,
		)
		if err != nil {
			return nil, fmt.Errorf("scan performance row: %w", err)
		}
		observations = append(observations, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performance rows: %w", err)
	}
	return observations, nil
}
