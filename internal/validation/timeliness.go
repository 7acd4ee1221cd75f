package validation

import (
	"fmt"
	"time"

	"fund-quality-engine/internal/domain"
)

// timelinessRule flags funds whose last_updated is older than the staleness
// threshold. Severity escalates with age along the configured ladder.
// Funds without a last_updated date are a completeness concern, not flagged here.
type timelinessRule struct {
	rules domain.RuleSet
	now   func() time.Time
}

func (r timelinessRule) Name() string { return "Timeliness" }

func (r timelinessRule) Evaluate(snap *domain.Snapshot, rec *Recorder) error {
	now := r.now()
	for i := range snap.Funds {
		fund := &snap.Funds[i]
		if fund.LastUpdated == nil {
			continue
		}
		daysOld := int(now.Sub(*fund.LastUpdated).Hours() / 24)
		if daysOld <= r.rules.StalenessThresholdDays {
			continue
		}

		severity := domain.SeverityMedium
		switch {
		case daysOld > r.rules.StalenessCriticalDays:
			severity = domain.SeverityCritical
		case daysOld > r.rules.StalenessHighDays:
			severity = domain.SeverityHigh
		}

		rec.LogIssue(fund.FundID, domain.IssueTimeliness, severity,
			domain.FieldLastUpdated,
			fmt.Sprintf("Within %d days", r.rules.StalenessThresholdDays),
			fund.LastUpdated.Format("2006-01-02"),
			fmt.Sprintf("Stale data: Last updated %d days ago", daysOld))
	}
	return nil
}
