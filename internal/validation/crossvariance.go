package validation

import (
	"fmt"
	"math"

	"fund-quality-engine/internal/domain"
)

// crossVarianceRule compares manager-reported fund size against the AUM in
// the first regulatory filing per fund_id (inner join; funds or filings
// without a match are skipped). Variance above the threshold escalates along
// the configured ladder. Zero or null filed AUM skips the comparison.
type crossVarianceRule struct {
	rules domain.RuleSet
}

func (r crossVarianceRule) Name() string { return "Cross-Source Variance" }

func (r crossVarianceRule) Evaluate(snap *domain.Snapshot, rec *Recorder) error {
	firstFiling := make(map[string]*domain.RegulatoryFiling, len(snap.Filings))
	for i := range snap.Filings {
		filing := &snap.Filings[i]
		if _, ok := firstFiling[filing.FundID]; !ok {
			firstFiling[filing.FundID] = filing
		}
	}

	for i := range snap.Funds {
		fund := &snap.Funds[i]
		filing, ok := firstFiling[fund.FundID]
		if !ok || fund.FundSizeUSDMillions == nil {
			continue
		}
		if filing.ReportedAUMMillions == nil || *filing.ReportedAUMMillions == 0 {
			continue
		}

		size, aum := *fund.FundSizeUSDMillions, *filing.ReportedAUMMillions
		variancePct := math.Abs((size-aum)/aum) * 100
		if variancePct <= r.rules.VarianceThresholdPct {
			continue
		}

		severity := domain.SeverityMedium
		switch {
		case variancePct > r.rules.VarianceCriticalPct:
			severity = domain.SeverityCritical
		case variancePct > r.rules.VarianceHighPct:
			severity = domain.SeverityHigh
		}

		rec.LogIssue(fund.FundID, domain.IssueCrossVariance, severity,
			domain.FieldFundSizeUSDMillions,
			fmt.Sprintf("$%.2fM (regulatory)", aum),
			fmt.Sprintf("$%.2fM (manager)", size),
			fmt.Sprintf("Significant variance between manager-reported ($%.2fM) and regulatory filing ($%.2fM): %.1f%%",
				size, aum, variancePct))
	}
	return nil
}
