package domain

import "time"

// RegulatoryFiling represents an independently sourced filing for a fund.
// Corresponds to the regulatory_filings table in PostgreSQL. Used only as a
// second opinion against manager-reported fund data; a filing's fund_id is
// not required to match a Fund.
type RegulatoryFiling struct {
	FundID              string
	FilingType          string // e.g. "Form ADV"
	FilingDate          time.Time
	ReportedAUMMillions *float64 // regulator-reported AUM (nullable)
	ReportedStrategy    string
	NumInvestors        *int
	Source              string // filing system identifier
}
