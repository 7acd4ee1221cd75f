package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"fund-quality-engine/internal/domain"
)

// performanceRecord mirrors one object of the performance JSON array.
// Absent and null numeric fields both decode to nil.
type performanceRecord struct {
	FundID                 string   `json:"fund_id"`
	ReportDate             string   `json:"report_date"`
	ReportQuarter          string   `json:"report_quarter"`
	IRRNetPct              *float64 `json:"irr_net_pct"`
	MOIC                   *float64 `json:"moic"`
	DPI                    *float64 `json:"dpi"`
	RVPI                   *float64 `json:"rvpi"`
	TVPI                   *float64 `json:"tvpi"`
	CapitalCalledMillions  *float64 `json:"capital_called_millions"`
	DistributionsMillions  *float64 `json:"distributions_millions"`
	RemainingValueMillions *float64 `json:"remaining_value_millions"`
	NAVPerShare            *float64 `json:"nav_per_share"`
	MonthlyReturnPct       *float64 `json:"monthly_return_pct"`
}

// filingRecord mirrors one object of the regulatory filings JSON array.
type filingRecord struct {
	FundID              string   `json:"fund_id"`
	FilingType          string   `json:"filing_type"`
	FilingDate          string   `json:"filing_date"`
	ReportedAUMMillions *float64 `json:"reported_aum_millions"`
	ReportedStrategy    string   `json:"reported_strategy"`
	NumInvestors        *int     `json:"num_investors"`
	Source              string   `json:"source"`
}

// LoadPerformanceJSON reads the performance report file.
func LoadPerformanceJSON(path string) ([]domain.PerformanceObservation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read performance json: %w", err)
	}

	var records []performanceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode performance json: %w", err)
	}

	observations := make([]domain.PerformanceObservation, 0, len(records))
	for i, rec := range records {
		reportDate, err := parseOptionalDate(strings.TrimSpace(rec.ReportDate))
		if err != nil {
			return nil, fmt.Errorf("performance record %d report_date: %w", i, err)
		}
		if reportDate == nil {
			return nil, fmt.Errorf("performance record %d missing report_date", i)
		}

		observations = append(observations, domain.PerformanceObservation{
			FundID:                 strings.TrimSpace(rec.FundID),
			ReportDate:             *reportDate,
			ReportQuarter:          strings.TrimSpace(rec.ReportQuarter),
			IRRNetPct:              rec.IRRNetPct,
			MOIC:                   rec.MOIC,
			DPI:                    rec.DPI,
			RVPI:                   rec.RVPI,
			TVPI:                   rec.TVPI,
			CapitalCalledMillions:  rec.CapitalCalledMillions,
			DistributionsMillions:  rec.DistributionsMillions,
			RemainingValueMillions: rec.RemainingValueMillions,
			NAVPerShare:            rec.NAVPerShare,
			MonthlyReturnPct:       rec.MonthlyReturnPct,
		})
	}

	return observations, nil
}

// LoadFilingsJSON reads the regulatory filings file. Array order is
// preserved; the first filing per fund is the one cross-source checks use.
func LoadFilingsJSON(path string) ([]domain.RegulatoryFiling, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read filings json: %w", err)
	}

	var records []filingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode filings json: %w", err)
	}

	filings := make([]domain.RegulatoryFiling, 0, len(records))
	for i, rec := range records {
		filingDate, err := parseOptionalDate(strings.TrimSpace(rec.FilingDate))
		if err != nil {
			return nil, fmt.Errorf("filing record %d filing_date: %w", i, err)
		}
		var date time.Time
		if filingDate != nil {
			date = *filingDate
		}

		filings = append(filings, domain.RegulatoryFiling{
			FundID:              strings.TrimSpace(rec.FundID),
			FilingType:          strings.TrimSpace(rec.FilingType),
			FilingDate:          date,
			ReportedAUMMillions: rec.ReportedAUMMillions,
			ReportedStrategy:    strings.TrimSpace(rec.ReportedStrategy),
			NumInvestors:        rec.NumInvestors,
			Source:              strings.TrimSpace(rec.Source),
		})
	}

	return filings, nil
}
