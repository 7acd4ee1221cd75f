package validation

import (
	"fmt"

	"fund-quality-engine/internal/domain"
)

// completenessRule flags null required fund fields. Identity fields are High
// severity, the rest Medium. A missing administrator fires a second, dedicated
// issue on top of the generic one: generic completeness and the
// self-administration risk are two distinct business concerns.
type completenessRule struct {
	rules domain.RuleSet
}

func (r completenessRule) Name() string { return "Completeness" }

func (r completenessRule) Evaluate(snap *domain.Snapshot, rec *Recorder) error {
	highPriority := make(map[string]bool, len(r.rules.HighPriorityFields))
	for _, field := range r.rules.HighPriorityFields {
		highPriority[field] = true
	}

	for i := range snap.Funds {
		fund := &snap.Funds[i]

		for _, field := range r.rules.RequiredFundFields {
			populated, err := fund.FieldPopulated(field)
			if err != nil {
				return fmt.Errorf("completeness rule: %w", err)
			}
			if populated {
				continue
			}
			severity := domain.SeverityMedium
			if highPriority[field] {
				severity = domain.SeverityHigh
			}
			rec.LogIssue(fund.FundID, domain.IssueCompleteness, severity,
				field, "Not Null", "NULL",
				fmt.Sprintf("Missing required field: %s", field))
		}

		if fund.Administrator == nil || *fund.Administrator == "" {
			rec.LogIssue(fund.FundID, domain.IssueCompleteness, domain.SeverityMedium,
				domain.FieldAdministrator, "Not Null", "NULL",
				fmt.Sprintf("Missing required field: %s", domain.FieldAdministrator))
			rec.LogIssue(fund.FundID, domain.IssueCompleteness, domain.SeverityMedium,
				domain.FieldAdministrator, "Valid Administrator", "NULL",
				"Missing administrator - potential self-administration risk")
		}
	}
	return nil
}
