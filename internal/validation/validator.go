package validation

import (
	"fmt"
	"time"

	"fund-quality-engine/internal/domain"
)

// Rule is one independent evaluator of the catalogue. Rules read the
// immutable snapshot and log issues through the recorder; they never mutate
// records or see each other's output. An error from Evaluate is a
// configuration or precondition violation and is fatal to the run.
type Rule interface {
	Name() string
	Evaluate(snap *domain.Snapshot, rec *Recorder) error
}

// Validator runs the fixed rule catalogue against one snapshot.
// The catalogue sequence is fixed so issue and alert numbering is
// reproducible across runs on identical input.
type Validator struct {
	rules domain.RuleSet
	now   func() time.Time
}

// New creates a validator over the given rule settings.
func New(rules domain.RuleSet) *Validator {
	return &Validator{
		rules: rules,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock for deterministic output.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// Result is the complete output of one validation pass.
type Result struct {
	Issues         []domain.Issue
	Alerts         []domain.Alert
	SeverityCounts map[domain.Severity]int
	TypeCounts     map[domain.IssueType]int
}

// Catalogue returns the rule evaluators in their fixed execution order.
func (v *Validator) Catalogue() []Rule {
	return []Rule{
		completenessRule{rules: v.rules},
		accuracyRule{rules: v.rules},
		consistencyRule{rules: v.rules},
		timelinessRule{rules: v.rules, now: v.now},
		duplicatesRule{},
		referentialRule{},
		crossVarianceRule{rules: v.rules},
	}
}

// Run evaluates the whole catalogue and returns the finalized issue set.
// A rule error aborts before any partial result is returned.
func (v *Validator) Run(snap *domain.Snapshot) (*Result, error) {
	if snap == nil {
		return nil, fmt.Errorf("validation: nil snapshot")
	}

	rec := NewRecorder(v.now)
	for _, rule := range v.Catalogue() {
		if err := rule.Evaluate(snap, rec); err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Name(), err)
		}
	}

	return &Result{
		Issues:         rec.Issues(),
		Alerts:         rec.Alerts(),
		SeverityCounts: rec.CountsBySeverity(),
		TypeCounts:     rec.CountsByType(),
	}, nil
}
