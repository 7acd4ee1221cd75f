package ingestion

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"fund-quality-engine/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func testRates() map[string]float64 {
	return map[string]float64{
		"USD": 1.0,
		"EUR": 1.08,
		"GBP": 1.27,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStandardizeFunds_CurrencyConversion(t *testing.T) {
	s := NewStandardizer(testRates(), quietLogger())

	records := []FundRecord{
		{FundID: "PE-001", FundSizeMillions: ptr(500.0), TargetSizeMillions: ptr(600.0), Currency: "EUR"},
		{FundID: "PE-002", FundSizeMillions: ptr(100.0), Currency: "USD"},
		{FundID: "PE-003", Currency: "GBP"},
	}

	funds := s.StandardizeFunds(records)
	if len(funds) != 3 {
		t.Fatalf("expected 3 funds, got %d", len(funds))
	}

	if *funds[0].FundSizeUSDMillions != 500.0*1.08 {
		t.Errorf("EUR size not converted: %v", *funds[0].FundSizeUSDMillions)
	}
	if *funds[0].TargetSizeUSDMillions != 600.0*1.08 {
		t.Errorf("EUR target not converted: %v", *funds[0].TargetSizeUSDMillions)
	}
	if funds[0].OriginalCurrency != "EUR" || *funds[0].OriginalFundSize != 500.0 {
		t.Errorf("original reporting not preserved: %+v", funds[0])
	}
	if *funds[1].FundSizeUSDMillions != 100.0 {
		t.Errorf("USD must pass through: %v", *funds[1].FundSizeUSDMillions)
	}
	if funds[2].FundSizeUSDMillions != nil {
		t.Errorf("nil size must stay nil")
	}
}

func TestStandardizeFunds_UnknownCurrencyAssumesUSD(t *testing.T) {
	s := NewStandardizer(testRates(), quietLogger())

	funds := s.StandardizeFunds([]FundRecord{
		{FundID: "PE-001", FundSizeMillions: ptr(250.0), Currency: "XYZ"},
	})

	if *funds[0].FundSizeUSDMillions != 250.0 {
		t.Errorf("unknown currency must assume USD: %v", *funds[0].FundSizeUSDMillions)
	}
	// The bad code stays on the record so the accuracy rule can flag it
	if funds[0].OriginalCurrency != "XYZ" {
		t.Errorf("original currency must survive: %s", funds[0].OriginalCurrency)
	}
}

func TestStandardizePerformance_TVPICalculated(t *testing.T) {
	s := NewStandardizer(testRates(), quietLogger())

	observations := []domain.PerformanceObservation{
		{FundID: "PE-001", DPI: ptr(0.8), RVPI: ptr(1.0), TVPI: ptr(1.9)},
		{FundID: "PE-002", DPI: ptr(0.5)},
		{FundID: "PE-003"},
	}

	out := s.StandardizePerformance(observations)

	if out[0].TVPICalculated == nil || *out[0].TVPICalculated != 1.8 {
		t.Errorf("tvpi_calculated not derived: %v", out[0].TVPICalculated)
	}
	if out[1].TVPICalculated != nil || out[2].TVPICalculated != nil {
		t.Errorf("tvpi_calculated requires both dpi and rvpi")
	}
	// Input slice untouched
	if observations[0].TVPICalculated != nil {
		t.Errorf("standardization must not mutate its input")
	}
}
