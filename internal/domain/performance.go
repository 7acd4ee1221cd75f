package domain

import "time"

// PerformanceObservation represents one periodic performance report for a fund.
// Corresponds to the fund_performance table in PostgreSQL. The fund_id may be
// orphaned; referential integrity is checked, not enforced.
type PerformanceObservation struct {
	FundID        string
	ReportDate    time.Time
	ReportQuarter string // e.g. "2024-Q3"

	// Ratio metrics
	IRRNetPct *float64 // net internal rate of return, percent
	MOIC      *float64 // multiple on invested capital
	DPI       *float64 // distributions to paid-in
	RVPI      *float64 // residual value to paid-in
	TVPI      *float64 // total value to paid-in, as reported

	// TVPICalculated is dpi + rvpi, derived during standardization when both
	// inputs are present. Reference value for consistency checks only.
	TVPICalculated *float64

	// Cash flow metrics
	CapitalCalledMillions  *float64
	DistributionsMillions  *float64
	RemainingValueMillions *float64

	NAVPerShare      *float64
	MonthlyReturnPct *float64
}

// Performance field identifiers as they appear in issues and exports.
const (
	FieldIRRNetPct        = "irr_net_pct"
	FieldMOIC             = "moic"
	FieldDPI              = "dpi"
	FieldRVPI             = "rvpi"
	FieldTVPI             = "tvpi"
	FieldMonthlyReturnPct = "monthly_return_pct"
)
