package domain

import "time"

// Alert is the escalated form of a Critical issue, created 1:1 and
// synchronously with it, never independently. Corresponds to the
// quality_alerts table in PostgreSQL (replaced per run) and the
// CRITICAL_ALERTS extract.
type Alert struct {
	AlertID string // "ALERT-%04d", 1-based, creation order
	IssueID int64  // the triggering issue

	// Mirror of the triggering issue
	FundID        string
	IssueType     IssueType
	Severity      Severity // always Critical
	FieldName     string
	ExpectedValue string
	ActualValue   string
	Description   string

	CreatedAt    time.Time
	Acknowledged bool // false at creation, flipped outside this engine
}
