package reporting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fund-quality-engine/internal/domain"
)

// RenderAlertsCSV renders the CRITICAL_ALERTS extract, one row per alert.
func RenderAlertsCSV(alerts []domain.Alert) string {
	var sb strings.Builder
	sb.WriteString("alert_id,issue_id,fund_id,issue_type,severity,field_name,expected_value,actual_value,description,created_at,acknowledged\n")
	for _, a := range alerts {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%s,%s,%s,%s,%s,%s,%s,%t\n",
			a.AlertID,
			a.IssueID,
			csvCell(a.FundID),
			csvCell(a.IssueType.String()),
			a.Severity,
			csvCell(a.FieldName),
			csvCell(a.ExpectedValue),
			csvCell(a.ActualValue),
			csvCell(a.Description),
			a.CreatedAt.Format(time.RFC3339),
			a.Acknowledged,
		))
	}
	return sb.String()
}

// RenderIssuesCSV renders the quality_issues extract.
func RenderIssuesCSV(issues []domain.Issue) string {
	var sb strings.Builder
	sb.WriteString("issue_id,fund_id,issue_type,severity,field_name,expected_value,actual_value,description,detected_at,status\n")
	for _, i := range issues {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			i.IssueID,
			csvCell(i.FundID),
			csvCell(i.IssueType.String()),
			i.Severity,
			csvCell(i.FieldName),
			csvCell(i.ExpectedValue),
			csvCell(i.ActualValue),
			csvCell(i.Description),
			i.DetectedAt.Format(time.RFC3339),
			i.Status,
		))
	}
	return sb.String()
}

// RenderMetricsCSV renders the quality_metrics extract.
func RenderMetricsCSV(metrics []domain.Metric) string {
	var sb strings.Builder
	sb.WriteString("metric_date,metric_name,metric_value,target_value,entity_type,entity_name,calculated_at\n")
	for _, m := range metrics {
		sb.WriteString(fmt.Sprintf("%s,%s,%.2f,%s,%s,%s,%s\n",
			m.MetricDate.Format("2006-01-02"),
			csvCell(m.MetricName),
			m.MetricValue,
			csvFloat(m.TargetValue),
			m.EntityType,
			csvCell(m.EntityName),
			m.CalculatedAt.Format(time.RFC3339),
		))
	}
	return sb.String()
}

// RenderFundsCSV renders the standardized funds extract.
func RenderFundsCSV(funds []domain.Fund) string {
	var sb strings.Builder
	sb.WriteString("fund_id,fund_name,manager_name,fund_type,strategy,vintage_year,inception_date,fund_size_usd_millions,original_currency,original_fund_size,target_size_usd_millions,status,geography,sector_focus,administrator,last_updated\n")
	for i := range funds {
		f := &funds[i]
		admin := ""
		if f.Administrator != nil {
			admin = *f.Administrator
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			csvCell(f.FundID),
			csvCell(f.FundName),
			csvCell(f.ManagerName),
			csvCell(f.FundType),
			csvCell(f.Strategy),
			csvInt(f.VintageYear),
			csvDate(f.InceptionDate),
			csvFloat(f.FundSizeUSDMillions),
			csvCell(f.OriginalCurrency),
			csvFloat(f.OriginalFundSize),
			csvFloat(f.TargetSizeUSDMillions),
			csvCell(f.Status),
			csvCell(f.Geography),
			csvCell(f.SectorFocus),
			csvCell(admin),
			csvTimestamp(f.LastUpdated),
		))
	}
	return sb.String()
}

// RenderPerformanceCSV renders the fund_performance extract.
func RenderPerformanceCSV(observations []domain.PerformanceObservation) string {
	var sb strings.Builder
	sb.WriteString("fund_id,report_date,report_quarter,irr_net_pct,moic,dpi,rvpi,tvpi,tvpi_calculated,capital_called_millions,distributions_millions,remaining_value_millions,nav_per_share,monthly_return_pct\n")
	for i := range observations {
		o := &observations[i]
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			csvCell(o.FundID),
			o.ReportDate.Format("2006-01-02"),
			csvCell(o.ReportQuarter),
			csvFloat(o.IRRNetPct),
			csvFloat(o.MOIC),
			csvFloat(o.DPI),
			csvFloat(o.RVPI),
			csvFloat(o.TVPI),
			csvFloat(o.TVPICalculated),
			csvFloat(o.CapitalCalledMillions),
			csvFloat(o.DistributionsMillions),
			csvFloat(o.RemainingValueMillions),
			csvFloat(o.NAVPerShare),
			csvFloat(o.MonthlyReturnPct),
		))
	}
	return sb.String()
}

// RenderExecutiveSummaryCSV renders the latest value per metric with its
// target and met flag. Callers pass the latest point per metric key.
func RenderExecutiveSummaryCSV(latest []domain.Metric) string {
	var sb strings.Builder
	sb.WriteString("metric_name,entity_type,entity_name,metric_value,target_value,target_met\n")
	for _, m := range latest {
		met := "-"
		if m.TargetValue != nil {
			if metricTargetMet(m) {
				met = "true"
			} else {
				met = "false"
			}
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.2f,%s,%s\n",
			csvCell(m.MetricName),
			m.EntityType,
			csvCell(m.EntityName),
			m.MetricValue,
			csvFloat(m.TargetValue),
			met,
		))
	}
	return sb.String()
}

// metricTargetMet interprets the target direction: issue-count metrics have
// a ceiling target, score metrics a floor.
func metricTargetMet(m domain.Metric) bool {
	if m.TargetValue == nil {
		return true
	}
	if strings.HasPrefix(m.MetricName, "Issues") || m.MetricName == domain.MetricTotalIssues {
		return m.MetricValue <= *m.TargetValue
	}
	return m.MetricValue >= *m.TargetValue
}

// csvCell quotes a value when it would break the row.
func csvCell(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func csvInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func csvDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func csvTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
