package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fund-quality-engine/internal/domain"
	"fund-quality-engine/internal/storage"
)

// Generator produces the run report and CSV extracts from stored data.
type Generator struct {
	funds       storage.FundStore
	performance storage.PerformanceStore
	filings     storage.FilingStore
	issues      storage.IssueStore
	alerts      storage.AlertStore
	metrics     storage.MetricStore
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	funds storage.FundStore,
	performance storage.PerformanceStore,
	filings storage.FilingStore,
	issues storage.IssueStore,
	alerts storage.AlertStore,
	metrics storage.MetricStore,
) *Generator {
	return &Generator{
		funds:       funds,
		performance: performance,
		filings:     filings,
		issues:      issues,
		alerts:      alerts,
		metrics:     metrics,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete run report. The fingerprint and sufficiency
// results come from the run that populated the stores; callers without them
// pass an empty fingerprint and section.
func (g *Generator) Generate(ctx context.Context, fingerprint string, sufficiency SufficiencySection) (*Report, error) {
	funds, err := g.funds.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load funds: %w", err)
	}
	observations, err := g.performance.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load performance: %w", err)
	}
	filings, err := g.filings.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load filings: %w", err)
	}
	issues, err := g.issues.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load issues: %w", err)
	}
	alerts, err := g.alerts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	latest, err := g.metrics.GetLatestByName(ctx)
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	return &Report{
		GeneratedAt:         g.now(),
		SnapshotFingerprint: fingerprint,
		RecordCounts: RecordCounts{
			Funds:       len(funds),
			Performance: len(observations),
			Filings:     len(filings),
		},
		Sufficiency:    sufficiency,
		TotalIssues:    len(issues),
		SeverityCounts: severityCounts(issues),
		TypeCounts:     typeCounts(issues),
		PassRatePct:    passRatePct(funds, issues),
		Scores:         systemScores(latest),
		Alerts:         alerts,
	}, nil
}

// WriteOutputs renders the report and all CSV extracts into dir.
func (g *Generator) WriteOutputs(ctx context.Context, dir string, report *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	funds, err := g.funds.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load funds: %w", err)
	}
	observations, err := g.performance.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load performance: %w", err)
	}
	issues, err := g.issues.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load issues: %w", err)
	}
	metrics, err := g.metrics.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load metrics: %w", err)
	}
	latest, err := g.metrics.GetLatestByName(ctx)
	if err != nil {
		return fmt.Errorf("load latest metrics: %w", err)
	}

	outputs := map[string]string{
		"quality_report.md":     RenderMarkdown(report),
		"CRITICAL_ALERTS.csv":   RenderAlertsCSV(report.Alerts),
		"quality_issues.csv":    RenderIssuesCSV(issues),
		"quality_metrics.csv":   RenderMetricsCSV(metrics),
		"funds.csv":             RenderFundsCSV(funds),
		"fund_performance.csv":  RenderPerformanceCSV(observations),
		"executive_summary.csv": RenderExecutiveSummaryCSV(latest),
	}
	for name, content := range outputs {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// severityCounts tallies issues per severity in rank order.
func severityCounts(issues []domain.Issue) []SeverityCountRow {
	counts := make(map[domain.Severity]int)
	for _, i := range issues {
		counts[i.Severity]++
	}
	rows := make([]SeverityCountRow, 0, len(domain.SeverityOrder))
	for _, severity := range domain.SeverityOrder {
		rows = append(rows, SeverityCountRow{Severity: severity, Count: counts[severity]})
	}
	return rows
}

// typeCounts tallies issues per rule family in catalogue order.
func typeCounts(issues []domain.Issue) []TypeCountRow {
	counts := make(map[domain.IssueType]int)
	for _, i := range issues {
		counts[i.IssueType]++
	}
	rows := make([]TypeCountRow, 0, len(domain.IssueTypeOrder))
	for _, issueType := range domain.IssueTypeOrder {
		rows = append(rows, TypeCountRow{Type: issueType, Count: counts[issueType]})
	}
	return rows
}

// passRatePct is the share of funds with no issues at all.
func passRatePct(funds []domain.Fund, issues []domain.Issue) float64 {
	if len(funds) == 0 {
		return 0
	}
	flagged := make(map[string]struct{})
	for _, i := range issues {
		if i.FundID != "" {
			flagged[i.FundID] = struct{}{}
		}
	}
	clean := 0
	for i := range funds {
		if _, ok := flagged[funds[i].FundID]; !ok {
			clean++
		}
	}
	return float64(clean) / float64(len(funds)) * 100
}

// systemScores extracts the system-level rows from the latest metrics.
func systemScores(latest []domain.Metric) []ScoreRow {
	var rows []ScoreRow
	for _, m := range latest {
		if m.EntityType != domain.EntitySystem {
			continue
		}
		rows = append(rows, ScoreRow{
			Name:   m.MetricName,
			Value:  m.MetricValue,
			Target: m.TargetValue,
			Met:    metricTargetMet(m),
		})
	}
	return rows
}
