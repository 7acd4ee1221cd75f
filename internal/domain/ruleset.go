package domain

import (
	"fmt"
	"time"
)

// NumericRange bounds a monitored numeric field, inclusive on both ends.
type NumericRange struct {
	Field string  `yaml:"field"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// TierBand maps a manager quality score range onto a tier.
type TierBand struct {
	Tier     int     `yaml:"tier"`
	Label    string  `yaml:"label"`
	MinScore float64 `yaml:"min_score"`
}

// CurrencyRate converts one unit of a currency into USD.
type CurrencyRate struct {
	Currency string  `yaml:"currency"`
	ToUSD    float64 `yaml:"to_usd"`
}

// ScoreWeights blend the three component scores into the overall score.
type ScoreWeights struct {
	Completeness float64 `yaml:"completeness"`
	Accuracy     float64 `yaml:"accuracy"`
	Timeliness   float64 `yaml:"timeliness"`
}

// ScoreTargets are the pass thresholds logged next to each metric.
type ScoreTargets struct {
	Completeness   float64 `yaml:"completeness"`
	Accuracy       float64 `yaml:"accuracy"`
	Timeliness     float64 `yaml:"timeliness"`
	ManagerQuality float64 `yaml:"manager_quality"`
	Overall        float64 `yaml:"overall"`
}

// RuleSet is the versioned configuration surface of the engine: every
// threshold, range, allow-list, and weight the rule catalogue and scoring
// engine consult. It is data, not code; DefaultRuleSet gives the shipped
// values and a YAML file may override them.
type RuleSet struct {
	// Completeness
	RequiredFundFields []string `yaml:"required_fund_fields"`
	HighPriorityFields []string `yaml:"high_priority_fields"`

	// Accuracy
	FundRanges        []NumericRange `yaml:"fund_ranges"`
	PerformanceRanges []NumericRange `yaml:"performance_ranges"`
	AllowedFundTypes  []string       `yaml:"allowed_fund_types"`
	AllowedCurrencies []string       `yaml:"allowed_currencies"`

	// Consistency
	ConsistencyTolerance float64 `yaml:"consistency_tolerance"`

	// Timeliness ladder: stale beyond threshold, escalating at high/critical
	StalenessThresholdDays int `yaml:"staleness_threshold_days"`
	StalenessHighDays      int `yaml:"staleness_high_days"`
	StalenessCriticalDays  int `yaml:"staleness_critical_days"`

	// Cross-source variance ladder, percentages
	VarianceThresholdPct float64 `yaml:"variance_threshold_pct"`
	VarianceHighPct      float64 `yaml:"variance_high_pct"`
	VarianceCriticalPct  float64 `yaml:"variance_critical_pct"`

	// Scoring
	CompletenessFields []string     `yaml:"completeness_fields"`
	Weights            ScoreWeights `yaml:"score_weights"`
	Targets            ScoreTargets `yaml:"score_targets"`
	TierBands          []TierBand   `yaml:"tier_bands"`

	// Standardization
	CurrencyRates []CurrencyRate `yaml:"currency_rates"`

	// Snapshot sufficiency
	MinFunds int `yaml:"min_funds"`
}

// DefaultRuleSet returns the shipped configuration. The vintage year upper
// bound tracks the current year, so the reference time is explicit.
func DefaultRuleSet(now time.Time) RuleSet {
	return RuleSet{
		RequiredFundFields: []string{
			FieldFundID,
			FieldFundName,
			FieldManagerName,
			FieldFundType,
			FieldVintageYear,
			FieldFundSizeUSDMillions,
			FieldTargetSizeUSDMillions,
		},
		HighPriorityFields: []string{FieldFundID, FieldFundName, FieldFundType},

		FundRanges: []NumericRange{
			{Field: FieldFundSizeUSDMillions, Min: 0, Max: 100000},
			{Field: FieldVintageYear, Min: 1950, Max: float64(now.Year())},
			{Field: FieldTargetSizeUSDMillions, Min: 0, Max: 100000},
		},
		PerformanceRanges: []NumericRange{
			{Field: FieldIRRNetPct, Min: -100, Max: 200},
			{Field: FieldDPI, Min: 0, Max: 20},
			{Field: FieldRVPI, Min: 0, Max: 20},
			{Field: FieldTVPI, Min: 0, Max: 30},
			{Field: FieldMonthlyReturnPct, Min: -50, Max: 100},
		},
		AllowedFundTypes:  []string{"Private Equity", "Hedge Fund", "Venture Capital"},
		AllowedCurrencies: []string{"USD", "EUR", "GBP", "JPY", "CHF", "CNY", "CAD"},

		ConsistencyTolerance: 0.01,

		StalenessThresholdDays: 90,
		StalenessHighDays:      180,
		StalenessCriticalDays:  365,

		VarianceThresholdPct: 5,
		VarianceHighPct:      15,
		VarianceCriticalPct:  30,

		CompletenessFields: []string{
			FieldFundID,
			FieldFundName,
			FieldManagerName,
			FieldFundType,
			FieldVintageYear,
			FieldFundSizeUSDMillions,
			FieldAdministrator,
			FieldStrategy,
			FieldGeography,
			FieldSectorFocus,
		},
		Weights: ScoreWeights{Completeness: 0.30, Accuracy: 0.50, Timeliness: 0.20},
		Targets: ScoreTargets{
			Completeness:   95,
			Accuracy:       98,
			Timeliness:     95,
			ManagerQuality: 85,
			Overall:        90,
		},
		TierBands: []TierBand{
			{Tier: 1, Label: "Tier 1 (Excellent)", MinScore: 95},
			{Tier: 2, Label: "Tier 2 (Good)", MinScore: 85},
			{Tier: 3, Label: "Tier 3 (Needs Improvement)", MinScore: 70},
			{Tier: 4, Label: "Tier 4 (Critical)", MinScore: 0},
		},

		CurrencyRates: []CurrencyRate{
			{Currency: "USD", ToUSD: 1.0},
			{Currency: "EUR", ToUSD: 1.08},
			{Currency: "GBP", ToUSD: 1.27},
			{Currency: "JPY", ToUSD: 0.0067},
			{Currency: "CHF", ToUSD: 1.12},
			{Currency: "CNY", ToUSD: 0.14},
			{Currency: "CAD", ToUSD: 0.73},
		},

		MinFunds: 1,
	}
}

// Validate checks the rule set for internal contradictions. A rule set that
// fails validation must abort the run before any evaluation.
func (r RuleSet) Validate() error {
	if len(r.RequiredFundFields) == 0 {
		return fmt.Errorf("required_fund_fields must not be empty")
	}
	if len(r.CompletenessFields) == 0 {
		return fmt.Errorf("completeness_fields must not be empty")
	}
	for _, nr := range append(append([]NumericRange{}, r.FundRanges...), r.PerformanceRanges...) {
		if nr.Field == "" {
			return fmt.Errorf("numeric range with empty field name")
		}
		if nr.Min >= nr.Max {
			return fmt.Errorf("numeric range for %s: min %v not below max %v", nr.Field, nr.Min, nr.Max)
		}
	}
	if len(r.AllowedFundTypes) == 0 {
		return fmt.Errorf("allowed_fund_types must not be empty")
	}
	if len(r.AllowedCurrencies) == 0 {
		return fmt.Errorf("allowed_currencies must not be empty")
	}
	if r.ConsistencyTolerance <= 0 {
		return fmt.Errorf("consistency_tolerance must be positive, got %v", r.ConsistencyTolerance)
	}
	if r.StalenessThresholdDays <= 0 {
		return fmt.Errorf("staleness_threshold_days must be positive, got %d", r.StalenessThresholdDays)
	}
	if r.StalenessHighDays <= r.StalenessThresholdDays || r.StalenessCriticalDays <= r.StalenessHighDays {
		return fmt.Errorf("staleness ladder must ascend: threshold %d < high %d < critical %d",
			r.StalenessThresholdDays, r.StalenessHighDays, r.StalenessCriticalDays)
	}
	if r.VarianceThresholdPct <= 0 {
		return fmt.Errorf("variance_threshold_pct must be positive, got %v", r.VarianceThresholdPct)
	}
	if r.VarianceHighPct <= r.VarianceThresholdPct || r.VarianceCriticalPct <= r.VarianceHighPct {
		return fmt.Errorf("variance ladder must ascend: threshold %v < high %v < critical %v",
			r.VarianceThresholdPct, r.VarianceHighPct, r.VarianceCriticalPct)
	}
	sum := r.Weights.Completeness + r.Weights.Accuracy + r.Weights.Timeliness
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("score weights must sum to 1.0, got %v", sum)
	}
	if len(r.TierBands) == 0 {
		return fmt.Errorf("tier_bands must not be empty")
	}
	for i := 1; i < len(r.TierBands); i++ {
		if r.TierBands[i].MinScore >= r.TierBands[i-1].MinScore {
			return fmt.Errorf("tier_bands must descend by min_score")
		}
	}
	if r.TierBands[len(r.TierBands)-1].MinScore != 0 {
		return fmt.Errorf("last tier band must start at 0")
	}
	if len(r.CurrencyRates) == 0 {
		return fmt.Errorf("currency_rates must not be empty")
	}
	for _, cr := range r.CurrencyRates {
		if cr.ToUSD <= 0 {
			return fmt.Errorf("currency rate for %s must be positive, got %v", cr.Currency, cr.ToUSD)
		}
	}
	if r.MinFunds < 1 {
		return fmt.Errorf("min_funds must be at least 1, got %d", r.MinFunds)
	}
	return nil
}

// TierFor maps a manager quality score onto its tier band.
func (r RuleSet) TierFor(score float64) TierBand {
	for _, band := range r.TierBands {
		if score >= band.MinScore {
			return band
		}
	}
	return r.TierBands[len(r.TierBands)-1]
}

// RateFor looks up the USD conversion rate for a currency code.
func (r RuleSet) RateFor(currency string) (float64, bool) {
	for _, cr := range r.CurrencyRates {
		if cr.Currency == currency {
			return cr.ToUSD, true
		}
	}
	return 0, false
}
