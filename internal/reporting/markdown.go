package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the run report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Data Quality Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Snapshot: `%s`\n\n", r.SnapshotFingerprint))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Collection | Records |\n")
	sb.WriteString("|------------|---------|\n")
	sb.WriteString(fmt.Sprintf("| Funds | %d |\n", r.RecordCounts.Funds))
	sb.WriteString(fmt.Sprintf("| Performance | %d |\n", r.RecordCounts.Performance))
	sb.WriteString(fmt.Sprintf("| Regulatory Filings | %d |\n", r.RecordCounts.Filings))
	sb.WriteString("\n")

	// Sufficiency gates
	sb.WriteString("## Sufficiency Checks\n\n")
	if len(r.Sufficiency.Checks) > 0 {
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.Sufficiency.Checks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")
		if r.Sufficiency.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** The snapshot was not validated.\n\n")
		}
	} else {
		sb.WriteString("No sufficiency checks performed.\n\n")
	}

	// Issues
	sb.WriteString("## Issues\n\n")
	sb.WriteString(fmt.Sprintf("Total: %d | Pass rate: %.1f%% of funds clean\n\n", r.TotalIssues, r.PassRatePct))
	if r.TotalIssues > 0 {
		sb.WriteString("| Severity | Count |\n")
		sb.WriteString("|----------|-------|\n")
		for _, row := range r.SeverityCounts {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", row.Severity, row.Count))
		}
		sb.WriteString("\n")
		sb.WriteString("| Check Type | Count |\n")
		sb.WriteString("|------------|-------|\n")
		for _, row := range r.TypeCounts {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", row.Type, row.Count))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No issues detected.\n\n")
	}

	// Scores
	sb.WriteString("## Quality Scores\n\n")
	if len(r.Scores) > 0 {
		sb.WriteString("| Metric | Value | Target | Status |\n")
		sb.WriteString("|--------|-------|--------|--------|\n")
		for _, score := range r.Scores {
			target := "-"
			status := "-"
			if score.Target != nil {
				target = fmt.Sprintf("%.2f", *score.Target)
				if score.Met {
					status = "MET"
				} else {
					status = "MISSED"
				}
			}
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %s | %s |\n",
				score.Name, score.Value, target, status))
		}
	} else {
		sb.WriteString("No scores available.\n")
	}
	sb.WriteString("\n")

	// Alerts
	sb.WriteString("## Critical Alerts\n\n")
	if len(r.Alerts) > 0 {
		sb.WriteString("| Alert | Fund | Check Type | Field | Description |\n")
		sb.WriteString("|-------|------|------------|-------|-------------|\n")
		for _, a := range r.Alerts {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
				a.AlertID, a.FundID, a.IssueType, a.FieldName, a.Description))
		}
	} else {
		sb.WriteString("No critical alerts.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
