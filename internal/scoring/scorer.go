package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"fund-quality-engine/internal/domain"
)

// Scorer rolls a finalized issue set and the record snapshot up into the
// quality metric families. It must run strictly after validation: accuracy
// and manager scores read the completed issue set.
type Scorer struct {
	rules domain.RuleSet
	now   func() time.Time
}

// New creates a scorer over the given rule settings.
func New(rules domain.RuleSet) *Scorer {
	return &Scorer{
		rules: rules,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock for deterministic output.
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// Compute produces the full metric set for one run, in a fixed order:
// completeness, accuracy, timeliness (system then per fund type), manager
// scores, the weighted overall score, then issue statistics. Every value is
// a percentage rounded to two decimals except counters.
func (s *Scorer) Compute(snap *domain.Snapshot, issues []domain.Issue) ([]domain.Metric, error) {
	if snap == nil {
		return nil, fmt.Errorf("scoring: nil snapshot")
	}

	now := s.now()
	b := &metricBuilder{
		metricDate:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		calculatedAt: now,
	}

	fundTypes := distinctFundTypes(snap.Funds)

	completeness, err := s.completenessScore(snap.Funds)
	if err != nil {
		return nil, err
	}
	b.add(domain.MetricCompleteness, completeness, ptr(s.rules.Targets.Completeness), domain.EntitySystem, domain.EntityNameSystem)
	for _, fundType := range fundTypes {
		score, err := s.completenessScore(fundsOfType(snap.Funds, fundType))
		if err != nil {
			return nil, err
		}
		b.add(domain.MetricCompleteness, score, ptr(s.rules.Targets.Completeness), domain.EntityFundType, fundType)
	}

	accuracyIssueFunds := fundIDsWithIssues(issues, domain.IssueAccuracy, domain.IssueConsistency)
	accuracy := accuracyScore(snap.Funds, accuracyIssueFunds)
	b.add(domain.MetricAccuracy, accuracy, ptr(s.rules.Targets.Accuracy), domain.EntitySystem, domain.EntityNameSystem)
	for _, fundType := range fundTypes {
		score := accuracyScore(fundsOfType(snap.Funds, fundType), accuracyIssueFunds)
		b.add(domain.MetricAccuracy, score, ptr(s.rules.Targets.Accuracy), domain.EntityFundType, fundType)
	}

	timeliness := s.timelinessScore(snap.Funds, now)
	b.add(domain.MetricTimeliness, timeliness, ptr(s.rules.Targets.Timeliness), domain.EntitySystem, domain.EntityNameSystem)
	for _, fundType := range fundTypes {
		score := s.timelinessScore(fundsOfType(snap.Funds, fundType), now)
		b.add(domain.MetricTimeliness, score, ptr(s.rules.Targets.Timeliness), domain.EntityFundType, fundType)
	}

	s.addManagerScores(b, snap.Funds, issues)

	// The overall score blends the rounded component values, exactly as
	// they were recorded above, so the stored metrics stay consistent.
	overall := s.rules.Weights.Completeness*round2(completeness) +
		s.rules.Weights.Accuracy*round2(accuracy) +
		s.rules.Weights.Timeliness*round2(timeliness)
	b.add(domain.MetricOverall, overall, ptr(s.rules.Targets.Overall), domain.EntitySystem, domain.EntityNameSystem)

	s.addIssueStatistics(b, issues)

	return b.metrics, nil
}

// ManagerTier maps a manager quality score onto its tier band.
func (s *Scorer) ManagerTier(score float64) domain.TierBand {
	return s.rules.TierFor(score)
}

// completenessScore is populated cells over records x monitored fields.
func (s *Scorer) completenessScore(funds []domain.Fund) (float64, error) {
	totalCells := len(funds) * len(s.rules.CompletenessFields)
	if totalCells == 0 {
		return 0, nil
	}
	populated := 0
	for i := range funds {
		for _, field := range s.rules.CompletenessFields {
			ok, err := funds[i].FieldPopulated(field)
			if err != nil {
				return 0, fmt.Errorf("completeness score: %w", err)
			}
			if ok {
				populated++
			}
		}
	}
	return float64(populated) / float64(totalCells) * 100, nil
}

// accuracyScore counts funds carrying no accuracy or consistency issue.
// Set semantics on fund_id: a fund with many issues still counts once.
func accuracyScore(funds []domain.Fund, issueFunds map[string]bool) float64 {
	if len(funds) == 0 {
		return 100
	}
	withIssues := 0
	for i := range funds {
		if issueFunds[funds[i].FundID] {
			withIssues++
		}
	}
	return float64(len(funds)-withIssues) / float64(len(funds)) * 100
}

// timelinessScore counts funds updated within the staleness threshold.
// A fund without a last_updated date counts as stale.
func (s *Scorer) timelinessScore(funds []domain.Fund, now time.Time) float64 {
	if len(funds) == 0 {
		return 100
	}
	timely := 0
	for i := range funds {
		updated := funds[i].LastUpdated
		if updated == nil {
			continue
		}
		daysOld := int(now.Sub(*updated).Hours() / 24)
		if daysOld <= s.rules.StalenessThresholdDays {
			timely++
		}
	}
	return float64(timely) / float64(len(funds)) * 100
}

// addManagerScores logs a quality score and tier per manager, sorted by
// manager name for reproducible metric ordering.
func (s *Scorer) addManagerScores(b *metricBuilder, funds []domain.Fund, issues []domain.Issue) {
	issueFunds := fundIDsWithIssues(issues, domain.IssueTypeOrder...)

	fundsByManager := make(map[string][]domain.Fund)
	for i := range funds {
		manager := funds[i].ManagerName
		fundsByManager[manager] = append(fundsByManager[manager], funds[i])
	}

	managers := make([]string, 0, len(fundsByManager))
	for manager := range fundsByManager {
		managers = append(managers, manager)
	}
	sort.Strings(managers)

	for _, manager := range managers {
		managerFunds := fundsByManager[manager]
		withIssues := 0
		for i := range managerFunds {
			if issueFunds[managerFunds[i].FundID] {
				withIssues++
			}
		}
		score := float64(len(managerFunds)-withIssues) / float64(len(managerFunds)) * 100
		tier := s.rules.TierFor(round2(score))

		b.add(domain.MetricManagerQuality, score, ptr(s.rules.Targets.ManagerQuality), domain.EntityManager, manager)
		b.add(domain.MetricManagerTier, float64(tier.Tier), nil, domain.EntityManager, manager)
	}
}

// addIssueStatistics logs counters for the finalized issue set: total,
// per severity, per type. Targets are zero.
func (s *Scorer) addIssueStatistics(b *metricBuilder, issues []domain.Issue) {
	if len(issues) == 0 {
		return
	}

	b.add(domain.MetricTotalIssues, float64(len(issues)), ptr(0.0), domain.EntitySystem, domain.EntityNameSystem)

	bySeverity := make(map[domain.Severity]int)
	byType := make(map[domain.IssueType]int)
	for _, issue := range issues {
		bySeverity[issue.Severity]++
		byType[issue.IssueType]++
	}

	// Every severity gets a row, zeros included, so drops to zero are
	// visible in the series. Type rows stay present-only.
	for _, severity := range domain.SeverityOrder {
		b.add(fmt.Sprintf("%s Issues", severity), float64(bySeverity[severity]), ptr(0.0), domain.EntitySystem, domain.EntityNameSystem)
	}
	for _, issueType := range domain.IssueTypeOrder {
		if count := byType[issueType]; count > 0 {
			b.add(fmt.Sprintf("Issues - %s", issueType), float64(count), ptr(0.0), domain.EntitySystem, domain.EntityNameSystem)
		}
	}
}

// metricBuilder appends metrics sharing one run's timestamps.
type metricBuilder struct {
	metricDate   time.Time
	calculatedAt time.Time
	metrics      []domain.Metric
}

func (b *metricBuilder) add(name string, value float64, target *float64, entityType domain.EntityType, entityName string) {
	b.metrics = append(b.metrics, domain.Metric{
		MetricDate:   b.metricDate,
		MetricName:   name,
		MetricValue:  round2(value),
		TargetValue:  target,
		EntityType:   entityType,
		EntityName:   entityName,
		CalculatedAt: b.calculatedAt,
	})
}

// fundIDsWithIssues collects the distinct fund ids carrying at least one
// issue of any of the given types.
func fundIDsWithIssues(issues []domain.Issue, types ...domain.IssueType) map[string]bool {
	wanted := make(map[domain.IssueType]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}
	out := make(map[string]bool)
	for _, issue := range issues {
		if wanted[issue.IssueType] {
			out[issue.FundID] = true
		}
	}
	return out
}

func distinctFundTypes(funds []domain.Fund) []string {
	seen := make(map[string]bool)
	var types []string
	for i := range funds {
		fundType := funds[i].FundType
		if fundType == "" || seen[fundType] {
			continue
		}
		seen[fundType] = true
		types = append(types, fundType)
	}
	sort.Strings(types)
	return types
}

func fundsOfType(funds []domain.Fund, fundType string) []domain.Fund {
	var out []domain.Fund
	for i := range funds {
		if funds[i].FundType == fundType {
			out = append(out, funds[i])
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ptr[T any](v T) *T { return &v }
