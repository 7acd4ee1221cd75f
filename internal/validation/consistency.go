package validation

import (
	"fmt"
	"math"

	"fund-quality-engine/internal/domain"
)

// consistencyRule checks mathematical relationships: TVPI must equal
// DPI + RVPI within tolerance, and fund size must not exceed target size.
// Evaluated only where all participating values are present.
type consistencyRule struct {
	rules domain.RuleSet
}

func (r consistencyRule) Name() string { return "Consistency" }

func (r consistencyRule) Evaluate(snap *domain.Snapshot, rec *Recorder) error {
	for i := range snap.Performance {
		obs := &snap.Performance[i]
		if obs.TVPI == nil || obs.DPI == nil || obs.RVPI == nil {
			continue
		}
		calculated := *obs.DPI + *obs.RVPI
		if math.Abs(*obs.TVPI-calculated) <= r.rules.ConsistencyTolerance {
			continue
		}
		rec.LogIssue(obs.FundID, domain.IssueConsistency, domain.SeverityHigh,
			domain.FieldTVPI,
			fmt.Sprintf("%.2f (DPI + RVPI)", calculated),
			fmt.Sprintf("%.2f", *obs.TVPI),
			fmt.Sprintf("TVPI calculation error: Reported %.2f, Expected %.2f (DPI %.2f + RVPI %.2f)",
				*obs.TVPI, calculated, *obs.DPI, *obs.RVPI))
	}

	for i := range snap.Funds {
		fund := &snap.Funds[i]
		if fund.FundSizeUSDMillions == nil || fund.TargetSizeUSDMillions == nil {
			continue
		}
		size, target := *fund.FundSizeUSDMillions, *fund.TargetSizeUSDMillions
		if size <= target {
			continue
		}
		rec.LogIssue(fund.FundID, domain.IssueConsistency, domain.SeverityMedium,
			domain.FieldFundSizeUSDMillions,
			fmt.Sprintf("<= %.2f", target),
			fmt.Sprintf("%.2f", size),
			fmt.Sprintf("Fund size ($%.2fM) exceeds target ($%.2fM)", size, target))
	}
	return nil
}
