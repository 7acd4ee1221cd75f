package domain

import "time"

// Fund represents one standardized fund master record.
// Corresponds to the funds table in PostgreSQL; fund_id is unique per run.
type Fund struct {
	FundID      string // PRIMARY KEY within a run
	FundName    string
	ManagerName string
	FundType    string // expected in AllowedFundTypes, validated not enforced
	Strategy    string

	VintageYear   *int       // year the fund began investing (nullable)
	InceptionDate *time.Time // nullable

	FundSizeUSDMillions   *float64 // standardized to USD (nullable)
	OriginalCurrency      string   // currency the size was reported in
	OriginalFundSize      *float64 // size in the original currency (nullable)
	TargetSizeUSDMillions *float64 // nullable

	Status      string
	Geography   string
	SectorFocus string

	Administrator *string    // nullable, absence is an operational risk signal
	LastUpdated   *time.Time // staleness reference point (nullable)
}

// Fund field identifiers as they appear in issues, metrics, and exports.
const (
	FieldFundID                = "fund_id"
	FieldFundName              = "fund_name"
	FieldManagerName           = "manager_name"
	FieldFundType              = "fund_type"
	FieldStrategy              = "strategy"
	FieldVintageYear           = "vintage_year"
	FieldInceptionDate         = "inception_date"
	FieldFundSizeUSDMillions   = "fund_size_usd_millions"
	FieldOriginalCurrency      = "original_currency"
	FieldTargetSizeUSDMillions = "target_size_usd_millions"
	FieldStatus                = "status"
	FieldGeography             = "geography"
	FieldSectorFocus           = "sector_focus"
	FieldAdministrator         = "administrator"
	FieldLastUpdated           = "last_updated"
)
