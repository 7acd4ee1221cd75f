package validation

import (
	"fmt"
	"sort"

	"fund-quality-engine/internal/domain"
)

// referentialRule checks that every distinct fund_id in the performance
// collection exists in the fund master. Exactly one issue per orphaned
// fund_id, however many observations reference it.
type referentialRule struct{}

func (r referentialRule) Name() string { return "Referential Integrity" }

func (r referentialRule) Evaluate(snap *domain.Snapshot, rec *Recorder) error {
	known := make(map[string]bool, len(snap.Funds))
	for i := range snap.Funds {
		known[snap.Funds[i].FundID] = true
	}

	seen := make(map[string]bool)
	var orphaned []string
	for i := range snap.Performance {
		id := snap.Performance[i].FundID
		if known[id] || seen[id] {
			continue
		}
		seen[id] = true
		orphaned = append(orphaned, id)
	}
	sort.Strings(orphaned)

	for _, id := range orphaned {
		rec.LogIssue(id, domain.IssueReferential, domain.SeverityHigh,
			domain.FieldFundID,
			"Exists in fund master",
			id,
			fmt.Sprintf("Performance records exist for fund_id '%s' but fund not in master data", id))
	}
	return nil
}
