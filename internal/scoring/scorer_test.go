package scoring

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"fund-quality-engine/internal/domain"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func newTestScorer() *Scorer {
	return New(domain.DefaultRuleSet(testNow)).WithClock(testClock)
}

// fullFund returns a fund with every monitored field populated and fresh data.
func fullFund(id, manager, fundType string) domain.Fund {
	updated := testNow.AddDate(0, 0, -10)
	return domain.Fund{
		FundID:                id,
		FundName:              "Fund " + id,
		ManagerName:           manager,
		FundType:              fundType,
		Strategy:              "Buyout",
		VintageYear:           ptr(2018),
		FundSizeUSDMillions:   ptr(500.0),
		OriginalCurrency:      "USD",
		TargetSizeUSDMillions: ptr(600.0),
		Status:                "Active",
		Geography:             "Europe",
		SectorFocus:           "Healthcare",
		Administrator:         ptr("Citco"),
		LastUpdated:           &updated,
	}
}

func findMetric(t *testing.T, metrics []domain.Metric, name string, entityType domain.EntityType, entityName string) domain.Metric {
	t.Helper()
	for _, m := range metrics {
		if m.MetricName == name && m.EntityType == entityType && m.EntityName == entityName {
			return m
		}
	}
	t.Fatalf("Metric %q for %s/%s not found", name, entityType, entityName)
	return domain.Metric{}
}

func TestCompletenessScore_FullyPopulated(t *testing.T) {
	snap := &domain.Snapshot{Funds: []domain.Fund{
		fullFund("F1", "M1", "Private Equity"),
		fullFund("F2", "M1", "Hedge Fund"),
	}}

	metrics, err := newTestScorer().Compute(snap, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	system := findMetric(t, metrics, domain.MetricCompleteness, domain.EntitySystem, domain.EntityNameSystem)
	if system.MetricValue != 100.0 {
		t.Errorf("Expected 100.0, got %v", system.MetricValue)
	}
	if system.TargetValue == nil || *system.TargetValue != 95.0 {
		t.Errorf("Expected target 95, got %v", system.TargetValue)
	}

	// Per fund type entities as well.
	pe := findMetric(t, metrics, domain.MetricCompleteness, domain.EntityFundType, "Private Equity")
	if pe.MetricValue != 100.0 {
		t.Errorf("Expected 100.0 for Private Equity, got %v", pe.MetricValue)
	}
}

func TestCompletenessScore_PartialCells(t *testing.T) {
	// 10 monitored fields; one fund missing 2 of them → 18/20 = 90%.
	full := fullFund("F1", "M1", "Private Equity")
	partial := fullFund("F2", "M1", "Private Equity")
	partial.Administrator = nil
	partial.SectorFocus = ""
	snap := &domain.Snapshot{Funds: []domain.Fund{full, partial}}

	metrics, err := newTestScorer().Compute(snap, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	system := findMetric(t, metrics, domain.MetricCompleteness, domain.EntitySystem, domain.EntityNameSystem)
	if system.MetricValue != 90.0 {
		t.Errorf("Expected 90.0, got %v", system.MetricValue)
	}
}

func TestAccuracyScore_SetSemantics(t *testing.T) {
	snap := &domain.Snapshot{Funds: []domain.Fund{
		fullFund("F1", "M1", "Private Equity"),
		fullFund("F2", "M1", "Private Equity"),
		fullFund("F3", "M1", "Private Equity"),
		fullFund("F4", "M1", "Private Equity"),
	}}

	// F1 carries three accuracy/consistency issues but counts once;
	// the timeliness issue on F2 does not qualify.
	issues := []domain.Issue{
		{IssueID: 1, FundID: "F1", IssueType: domain.IssueAccuracy, Severity: domain.SeverityHigh},
		{IssueID: 2, FundID: "F1", IssueType: domain.IssueAccuracy, Severity: domain.SeverityCritical},
		{IssueID: 3, FundID: "F1", IssueType: domain.IssueConsistency, Severity: domain.SeverityHigh},
		{IssueID: 4, FundID: "F2", IssueType: domain.IssueTimeliness, Severity: domain.SeverityMedium},
	}

	metrics, err := newTestScorer().Compute(snap, issues)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	system := findMetric(t, metrics, domain.MetricAccuracy, domain.EntitySystem, domain.EntityNameSystem)
	if system.MetricValue != 75.0 {
		t.Errorf("Expected 75.0 (3 of 4 funds clean), got %v", system.MetricValue)
	}
}

func TestTimelinessScore_ThresholdAndMissingDates(t *testing.T) {
	fresh := fullFund("F1", "M1", "Private Equity")
	stale := fullFund("F2", "M1", "Private Equity")
	staleDate := testNow.AddDate(0, 0, -120)
	stale.LastUpdated = &staleDate
	undated := fullFund("F3", "M1", "Private Equity")
	undated.LastUpdated = nil
	boundary := fullFund("F4", "M1", "Private Equity")
	boundaryDate := testNow.AddDate(0, 0, -90)
	boundary.LastUpdated = &boundaryDate

	snap := &domain.Snapshot{Funds: []domain.Fund{fresh, stale, undated, boundary}}

	metrics, err := newTestScorer().Compute(snap, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	// fresh and boundary are timely; stale and undated are not → 50%.
	system := findMetric(t, metrics, domain.MetricTimeliness, domain.EntitySystem, domain.EntityNameSystem)
	if system.MetricValue != 50.0 {
		t.Errorf("Expected 50.0, got %v", system.MetricValue)
	}
}

func TestManagerQualityScore_TenFundsTwoWithIssues(t *testing.T) {
	var funds []domain.Fund
	for i := 1; i <= 10; i++ {
		funds = append(funds, fullFund(fmt.Sprintf("F%02d", i), "Apex Capital", "Private Equity"))
	}
	snap := &domain.Snapshot{Funds: funds}

	issues := []domain.Issue{
		{IssueID: 1, FundID: "F01", IssueType: domain.IssueDuplicates, Severity: domain.SeverityHigh},
		{IssueID: 2, FundID: "F01", IssueType: domain.IssueAccuracy, Severity: domain.SeverityHigh},
		{IssueID: 3, FundID: "F02", IssueType: domain.IssueTimeliness, Severity: domain.SeverityMedium},
	}

	scorer := newTestScorer()
	metrics, err := scorer.Compute(snap, issues)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	score := findMetric(t, metrics, domain.MetricManagerQuality, domain.EntityManager, "Apex Capital")
	if score.MetricValue != 80.0 {
		t.Errorf("Expected 80.0, got %v", score.MetricValue)
	}

	tier := findMetric(t, metrics, domain.MetricManagerTier, domain.EntityManager, "Apex Capital")
	if tier.MetricValue != 3 {
		t.Errorf("Expected Tier 3, got %v", tier.MetricValue)
	}
	if tier.TargetValue != nil {
		t.Errorf("Tier metric carries no target, got %v", *tier.TargetValue)
	}
	if band := scorer.ManagerTier(80.0); band.Label != "Tier 3 (Needs Improvement)" {
		t.Errorf("Expected Tier 3 label, got %q", band.Label)
	}
}

func TestManagerTierBands(t *testing.T) {
	scorer := newTestScorer()
	cases := []struct {
		score float64
		tier  int
	}{
		{100, 1},
		{95, 1},
		{94.99, 2},
		{85, 2},
		{84.99, 3},
		{70, 3},
		{69.99, 4},
		{0, 4},
	}
	for _, tc := range cases {
		if band := scorer.ManagerTier(tc.score); band.Tier != tc.tier {
			t.Errorf("Score %v: expected tier %d, got %d", tc.score, tc.tier, band.Tier)
		}
	}
}

func TestOverallScore_PerfectComponents(t *testing.T) {
	snap := &domain.Snapshot{Funds: []domain.Fund{
		fullFund("F1", "M1", "Private Equity"),
	}}

	metrics, err := newTestScorer().Compute(snap, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	overall := findMetric(t, metrics, domain.MetricOverall, domain.EntitySystem, domain.EntityNameSystem)
	if overall.MetricValue != 100.0 {
		t.Errorf("Expected 100.00 overall, got %v", overall.MetricValue)
	}
	if overall.TargetValue == nil || *overall.TargetValue != 90.0 {
		t.Errorf("Expected target 90, got %v", overall.TargetValue)
	}
}

func TestOverallScore_Weighting(t *testing.T) {
	// Completeness 90 (18/20 cells), accuracy 50 (1 of 2 funds), timeliness 100.
	full := fullFund("F1", "M1", "Private Equity")
	partial := fullFund("F2", "M1", "Private Equity")
	partial.Administrator = nil
	partial.SectorFocus = ""
	snap := &domain.Snapshot{Funds: []domain.Fund{full, partial}}

	issues := []domain.Issue{
		{IssueID: 1, FundID: "F1", IssueType: domain.IssueAccuracy, Severity: domain.SeverityHigh},
	}

	metrics, err := newTestScorer().Compute(snap, issues)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	overall := findMetric(t, metrics, domain.MetricOverall, domain.EntitySystem, domain.EntityNameSystem)
	expected := 0.30*90 + 0.50*50 + 0.20*100 // = 72.0
	if overall.MetricValue != expected {
		t.Errorf("Expected %.2f, got %v", expected, overall.MetricValue)
	}
}

func TestOverallScore_BlendsRoundedComponents(t *testing.T) {
	// Completeness 66.67 (20/30 cells), accuracy 66.67 (1 of 3 funds with
	// an issue), timeliness 0 (no last_updated anywhere). The blend must use
	// the recorded two-decimal components: 0.30*66.67 + 0.50*66.67 = 53.34,
	// where blending the raw thirds would give 53.33.
	f1 := fullFund("F1", "M1", "Private Equity")
	f1.LastUpdated = nil
	f2 := fullFund("F2", "M1", "Private Equity")
	f2.LastUpdated = nil
	snap := &domain.Snapshot{Funds: []domain.Fund{f1, f2, {}}}

	issues := []domain.Issue{
		{IssueID: 1, FundID: "F1", IssueType: domain.IssueAccuracy, Severity: domain.SeverityHigh},
	}

	metrics, err := newTestScorer().Compute(snap, issues)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	completeness := findMetric(t, metrics, domain.MetricCompleteness, domain.EntitySystem, domain.EntityNameSystem)
	if completeness.MetricValue != 66.67 {
		t.Fatalf("Expected completeness 66.67, got %v", completeness.MetricValue)
	}
	accuracy := findMetric(t, metrics, domain.MetricAccuracy, domain.EntitySystem, domain.EntityNameSystem)
	if accuracy.MetricValue != 66.67 {
		t.Fatalf("Expected accuracy 66.67, got %v", accuracy.MetricValue)
	}

	overall := findMetric(t, metrics, domain.MetricOverall, domain.EntitySystem, domain.EntityNameSystem)
	if overall.MetricValue != 53.34 {
		t.Errorf("Expected 53.34 from the rounded components, got %v", overall.MetricValue)
	}
}

func TestIssueStatistics(t *testing.T) {
	snap := &domain.Snapshot{Funds: []domain.Fund{fullFund("F1", "M1", "Private Equity")}}

	issues := []domain.Issue{
		{IssueID: 1, FundID: "F1", IssueType: domain.IssueAccuracy, Severity: domain.SeverityCritical},
		{IssueID: 2, FundID: "F1", IssueType: domain.IssueAccuracy, Severity: domain.SeverityHigh},
		{IssueID: 3, FundID: "F1", IssueType: domain.IssueCompleteness, Severity: domain.SeverityMedium},
	}

	metrics, err := newTestScorer().Compute(snap, issues)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	total := findMetric(t, metrics, domain.MetricTotalIssues, domain.EntitySystem, domain.EntityNameSystem)
	if total.MetricValue != 3 {
		t.Errorf("Expected 3 total issues, got %v", total.MetricValue)
	}
	critical := findMetric(t, metrics, "Critical Issues", domain.EntitySystem, domain.EntityNameSystem)
	if critical.MetricValue != 1 {
		t.Errorf("Expected 1 critical issue, got %v", critical.MetricValue)
	}
	accuracy := findMetric(t, metrics, "Issues - Accuracy", domain.EntitySystem, domain.EntityNameSystem)
	if accuracy.MetricValue != 2 {
		t.Errorf("Expected 2 accuracy issues, got %v", accuracy.MetricValue)
	}

	// Zero-count severities still get a row, at zero.
	low := findMetric(t, metrics, "Low Issues", domain.EntitySystem, domain.EntityNameSystem)
	if low.MetricValue != 0 {
		t.Errorf("Expected 0 low issues, got %v", low.MetricValue)
	}

	// Type rows are present-only.
	for _, m := range metrics {
		if m.MetricName == "Issues - Timeliness" {
			t.Error("Issues - Timeliness should not be logged when none occurred")
		}
	}
}

func TestIssueStatistics_NoIssues(t *testing.T) {
	snap := &domain.Snapshot{Funds: []domain.Fund{fullFund("F1", "M1", "Private Equity")}}

	metrics, err := newTestScorer().Compute(snap, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for _, m := range metrics {
		if m.MetricName == domain.MetricTotalIssues {
			t.Error("Total Issues should not be logged for an empty issue set")
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	snap := &domain.Snapshot{Funds: []domain.Fund{
		fullFund("F1", "Zenith Partners", "Hedge Fund"),
		fullFund("F2", "Apex Capital", "Private Equity"),
		fullFund("F3", "Apex Capital", "Venture Capital"),
	}}
	issues := []domain.Issue{
		{IssueID: 1, FundID: "F2", IssueType: domain.IssueAccuracy, Severity: domain.SeverityHigh},
	}

	scorer := newTestScorer()
	first, err := scorer.Compute(snap, issues)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	second, err := scorer.Compute(snap, issues)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Metric sets differ between identical runs")
	}

	// Manager entities must come out sorted by name.
	var managers []string
	for _, m := range first {
		if m.MetricName == domain.MetricManagerQuality {
			managers = append(managers, m.EntityName)
		}
	}
	if !reflect.DeepEqual(managers, []string{"Apex Capital", "Zenith Partners"}) {
		t.Errorf("Managers not sorted: %v", managers)
	}
}

func TestCompute_MetricTimestamps(t *testing.T) {
	snap := &domain.Snapshot{Funds: []domain.Fund{fullFund("F1", "M1", "Private Equity")}}

	metrics, err := newTestScorer().Compute(snap, nil)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	wantDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, m := range metrics {
		if !m.MetricDate.Equal(wantDate) {
			t.Errorf("Metric %q: expected date %v, got %v", m.MetricName, wantDate, m.MetricDate)
		}
		if !m.CalculatedAt.Equal(testNow) {
			t.Errorf("Metric %q: expected calculated at %v, got %v", m.MetricName, testNow, m.CalculatedAt)
		}
	}
}
