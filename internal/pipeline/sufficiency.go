package pipeline

import (
	"fmt"
	"sort"

	"fund-quality-engine/internal/domain"
)

// SufficiencyCheck is one gate criterion evaluated before validation.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult holds the full gate outcome. A run whose gate fails
// persists nothing beyond a FAILED audit entry.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
	Errors  []string
}

// SufficiencyChecker decides whether a snapshot is worth validating at all.
// The rule catalogue tolerates defective records; the gate rejects snapshots
// whose shape makes every downstream score meaningless.
type SufficiencyChecker struct {
	rules domain.RuleSet
}

// NewSufficiencyChecker creates a checker over the given rule settings.
func NewSufficiencyChecker(rules domain.RuleSet) *SufficiencyChecker {
	return &SufficiencyChecker{rules: rules}
}

// Check evaluates all gate criteria against the snapshot.
func (c *SufficiencyChecker) Check(snap *domain.Snapshot) *SufficiencyResult {
	result := &SufficiencyResult{
		Checks:  make([]SufficiencyCheck, 0, 3),
		AllPass: true,
	}

	checks := []func(*domain.Snapshot) (SufficiencyCheck, []string){
		c.checkMinimumFunds,
		c.checkUniqueFundIDs,
		c.checkNonEmptyFundIDs,
	}
	for _, check := range checks {
		row, errs := check(snap)
		result.Checks = append(result.Checks, row)
		if !row.Pass {
			result.AllPass = false
			result.Errors = append(result.Errors, errs...)
		}
	}

	return result
}

// checkMinimumFunds: the fund master must carry at least min_funds records.
func (c *SufficiencyChecker) checkMinimumFunds(snap *domain.Snapshot) (SufficiencyCheck, []string) {
	count := len(snap.Funds)
	return SufficiencyCheck{
		Name:      "Fund master records",
		Threshold: fmt.Sprintf(">= %d", c.rules.MinFunds),
		Actual:    fmt.Sprintf("%d", count),
		Pass:      count >= c.rules.MinFunds,
	}, []string{fmt.Sprintf("fund master has %d records, need %d", count, c.rules.MinFunds)}
}

// checkUniqueFundIDs: duplicate fund_id count == 0. Duplicate ids would make
// every per-fund aggregation ambiguous, so they gate the run rather than
// surface as issues.
func (c *SufficiencyChecker) checkUniqueFundIDs(snap *domain.Snapshot) (SufficiencyCheck, []string) {
	seen := make(map[string]int)
	for i := range snap.Funds {
		seen[snap.Funds[i].FundID]++
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	duplicates := 0
	var errors []string
	for _, id := range ids {
		if count := seen[id]; count > 1 {
			duplicates++
			errors = append(errors, fmt.Sprintf("duplicate fund_id: %s (count=%d)", id, count))
		}
	}

	return SufficiencyCheck{
		Name:      "Duplicate fund_id count",
		Threshold: "= 0",
		Actual:    fmt.Sprintf("%d", duplicates),
		Pass:      duplicates == 0,
	}, errors
}

// checkNonEmptyFundIDs: performance and filing records with an empty fund_id
// can never be joined to anything.
func (c *SufficiencyChecker) checkNonEmptyFundIDs(snap *domain.Snapshot) (SufficiencyCheck, []string) {
	empty := 0
	for i := range snap.Performance {
		if snap.Performance[i].FundID == "" {
			empty++
		}
	}
	for i := range snap.Filings {
		if snap.Filings[i].FundID == "" {
			empty++
		}
	}

	var errors []string
	if empty > 0 {
		errors = append(errors, fmt.Sprintf("%d performance/filing records carry an empty fund_id", empty))
	}

	return SufficiencyCheck{
		Name:      "Unjoinable child records",
		Threshold: "= 0",
		Actual:    fmt.Sprintf("%d", empty),
		Pass:      empty == 0,
	}, errors
}
