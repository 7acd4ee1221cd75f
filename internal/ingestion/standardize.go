package ingestion

import (
	"github.com/sirupsen/logrus"

	"fund-quality-engine/internal/domain"
)

// Standardizer converts raw fund records to the standardized schema:
// reported sizes become USD millions via the configured rate table and
// derived reference values are filled in.
type Standardizer struct {
	rates  map[string]float64
	logger *logrus.Logger
}

// NewStandardizer creates a Standardizer with the given currency rate table.
func NewStandardizer(rates map[string]float64, logger *logrus.Logger) *Standardizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Standardizer{rates: rates, logger: logger}
}

// StandardizeFunds converts raw fund rows to standardized Fund records.
// Unknown currencies are logged and treated as USD; the invalid currency
// code survives on the record for the accuracy rule to flag.
func (s *Standardizer) StandardizeFunds(records []FundRecord) []domain.Fund {
	funds := make([]domain.Fund, 0, len(records))
	for i := range records {
		rec := &records[i]
		funds = append(funds, domain.Fund{
			FundID:                rec.FundID,
			FundName:              rec.FundName,
			ManagerName:           rec.ManagerName,
			FundType:              rec.FundType,
			Strategy:              rec.Strategy,
			VintageYear:           rec.VintageYear,
			InceptionDate:         rec.InceptionDate,
			FundSizeUSDMillions:   s.toUSD(rec.FundSizeMillions, rec.Currency),
			OriginalCurrency:      rec.Currency,
			OriginalFundSize:      rec.FundSizeMillions,
			TargetSizeUSDMillions: s.toUSD(rec.TargetSizeMillions, rec.Currency),
			Status:                rec.Status,
			Geography:             rec.Geography,
			SectorFocus:           rec.SectorFocus,
			Administrator:         rec.Administrator,
			LastUpdated:           rec.LastUpdated,
		})
	}
	return funds
}

// StandardizePerformance fills tvpi_calculated on each observation when
// both DPI and RVPI are present.
func (s *Standardizer) StandardizePerformance(observations []domain.PerformanceObservation) []domain.PerformanceObservation {
	out := make([]domain.PerformanceObservation, len(observations))
	copy(out, observations)
	for i := range out {
		if out[i].DPI != nil && out[i].RVPI != nil {
			calculated := *out[i].DPI + *out[i].RVPI
			out[i].TVPICalculated = &calculated
		}
	}
	return out
}

func (s *Standardizer) toUSD(amount *float64, currency string) *float64 {
	if amount == nil {
		return nil
	}
	rate, ok := s.rates[currency]
	if !ok {
		s.logger.WithField("currency", currency).Warn("unknown currency, assuming USD")
		rate = 1.0
	}
	converted := *amount * rate
	return &converted
}
