package validation

import (
	"fmt"
	"strconv"
	"strings"

	"fund-quality-engine/internal/domain"
)

// accuracyRule checks numeric ranges on fund and performance records and
// categorical allow-lists on fund records. Null values never fire; absence
// is solely a completeness concern.
type accuracyRule struct {
	rules domain.RuleSet
}

func (r accuracyRule) Name() string { return "Accuracy" }

func (r accuracyRule) Evaluate(snap *domain.Snapshot, rec *Recorder) error {
	if err := r.checkFundRanges(snap, rec); err != nil {
		return err
	}
	if err := r.checkFundCategoricals(snap, rec); err != nil {
		return err
	}
	return r.checkPerformanceRanges(snap, rec)
}

func (r accuracyRule) checkFundRanges(snap *domain.Snapshot, rec *Recorder) error {
	for i := range snap.Funds {
		fund := &snap.Funds[i]
		for _, nr := range r.rules.FundRanges {
			value, err := fund.NumericFieldValue(nr.Field)
			if err != nil {
				return fmt.Errorf("accuracy rule: %w", err)
			}
			if value == nil || (*value >= nr.Min && *value <= nr.Max) {
				continue
			}
			severity := domain.SeverityHigh
			if *value < 0 {
				severity = domain.SeverityCritical
			}
			rec.LogIssue(fund.FundID, domain.IssueAccuracy, severity,
				nr.Field,
				fmt.Sprintf("Between %s and %s", formatBound(nr.Min), formatBound(nr.Max)),
				formatValue(*value),
				fmt.Sprintf("%s out of valid range: %s", nr.Field, formatValue(*value)))
		}
	}
	return nil
}

func (r accuracyRule) checkFundCategoricals(snap *domain.Snapshot, rec *Recorder) error {
	categoricals := []struct {
		field   string
		allowed []string
	}{
		{domain.FieldFundType, r.rules.AllowedFundTypes},
		{domain.FieldOriginalCurrency, r.rules.AllowedCurrencies},
	}

	for i := range snap.Funds {
		fund := &snap.Funds[i]
		for _, cat := range categoricals {
			value, err := fund.CategoricalFieldValue(cat.field)
			if err != nil {
				return fmt.Errorf("accuracy rule: %w", err)
			}
			if value == "" || contains(cat.allowed, value) {
				continue
			}
			rec.LogIssue(fund.FundID, domain.IssueAccuracy, domain.SeverityMedium,
				cat.field,
				fmt.Sprintf("One of: %s", strings.Join(cat.allowed, ", ")),
				value,
				fmt.Sprintf("Invalid %s: '%s' not in allowed values", cat.field, value))
		}
	}
	return nil
}

func (r accuracyRule) checkPerformanceRanges(snap *domain.Snapshot, rec *Recorder) error {
	for i := range snap.Performance {
		obs := &snap.Performance[i]
		for _, nr := range r.rules.PerformanceRanges {
			value, err := obs.NumericFieldValue(nr.Field)
			if err != nil {
				return fmt.Errorf("accuracy rule: %w", err)
			}
			if value == nil || (*value >= nr.Min && *value <= nr.Max) {
				continue
			}
			// Implausible IRR makes the whole track record suspect.
			severity := domain.SeverityHigh
			if strings.Contains(strings.ToLower(nr.Field), "irr") {
				severity = domain.SeverityCritical
			}
			rec.LogIssue(obs.FundID, domain.IssueAccuracy, severity,
				nr.Field,
				fmt.Sprintf("Between %s and %s", formatBound(nr.Min), formatBound(nr.Max)),
				formatValue(*value),
				fmt.Sprintf("Implausible %s: %s", nr.Field, formatValue(*value)))
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// formatBound renders a range bound without a trailing fraction when whole.
func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatValue renders an offending value the way it will appear in issues
// and exports.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
