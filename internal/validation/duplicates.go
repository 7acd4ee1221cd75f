package validation

import (
	"fmt"

	"fund-quality-engine/internal/domain"
)

// duplicatesRule groups funds by (manager_name, fund_name) and flags every
// member of a group larger than one. One issue per member, not per group,
// so each offending record is traceable on its own. Funds with an empty
// manager or name never form a group: a missing name is a completeness
// concern, not a duplicate of every other unnamed fund.
type duplicatesRule struct{}

func (r duplicatesRule) Name() string { return "Duplicates" }

type managerFundKey struct {
	manager string
	name    string
}

func (r duplicatesRule) Evaluate(snap *domain.Snapshot, rec *Recorder) error {
	groups := make(map[managerFundKey][]*domain.Fund)
	for i := range snap.Funds {
		fund := &snap.Funds[i]
		if fund.ManagerName == "" || fund.FundName == "" {
			continue
		}
		key := managerFundKey{manager: fund.ManagerName, name: fund.FundName}
		groups[key] = append(groups[key], fund)
	}

	// Iterate in snapshot order so issue numbering stays reproducible.
	flagged := make(map[string]bool)
	for i := range snap.Funds {
		fund := &snap.Funds[i]
		if flagged[fund.FundID] {
			continue
		}
		key := managerFundKey{manager: fund.ManagerName, name: fund.FundName}
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		for _, member := range members {
			flagged[member.FundID] = true
			rec.LogIssue(member.FundID, domain.IssueDuplicates, domain.SeverityHigh,
				domain.FieldFundName,
				"Unique within manager",
				member.FundName,
				fmt.Sprintf("Duplicate fund name: %d funds named '%s' from %s",
					len(members), key.name, key.manager))
		}
	}
	return nil
}
