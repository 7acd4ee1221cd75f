package domain

import "time"

// Severity classifies how damaging a quality issue is.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityHigh     Severity = "High"
	SeverityMedium   Severity = "Medium"
	SeverityLow      Severity = "Low"
)

// String returns the string representation of Severity.
func (s Severity) String() string {
	return string(s)
}

// IsValid checks if the severity is a valid value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Rank orders severities, most damaging first (Critical=0).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// SeverityOrder lists severities from most to least damaging.
var SeverityOrder = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// IssueType identifies which rule family detected a quality issue.
type IssueType string

const (
	IssueCompleteness   IssueType = "Completeness"
	IssueAccuracy       IssueType = "Accuracy"
	IssueConsistency    IssueType = "Consistency"
	IssueTimeliness     IssueType = "Timeliness"
	IssueDuplicates     IssueType = "Duplicates"
	IssueReferential    IssueType = "Referential Integrity"
	IssueCrossVariance  IssueType = "Cross-Source Variance"
)

// String returns the string representation of IssueType.
func (t IssueType) String() string {
	return string(t)
}

// IsValid checks if the issue type is a valid value.
func (t IssueType) IsValid() bool {
	switch t {
	case IssueCompleteness, IssueAccuracy, IssueConsistency, IssueTimeliness,
		IssueDuplicates, IssueReferential, IssueCrossVariance:
		return true
	}
	return false
}

// IssueTypeOrder lists issue types in catalogue order.
var IssueTypeOrder = []IssueType{
	IssueCompleteness,
	IssueAccuracy,
	IssueConsistency,
	IssueTimeliness,
	IssueDuplicates,
	IssueReferential,
	IssueCrossVariance,
}

// Issue lifecycle status values. The engine only ever creates Open issues;
// Resolved is a documented terminal state driven outside this engine.
const (
	IssueStatusOpen     = "Open"
	IssueStatusResolved = "Resolved"
)

// Issue is the atomic unit of defect reporting. Immutable once created;
// every run starts from an empty issue set. Corresponds to the
// quality_issues table in PostgreSQL (replaced per run).
type Issue struct {
	IssueID       int64 // sequential, 1-based, assigned at log time
	FundID        string
	IssueType     IssueType
	Severity      Severity
	FieldName     string
	ExpectedValue string
	ActualValue   string
	Description   string
	DetectedAt    time.Time
	Status        string  // Open | Resolved
	Resolution    *string // notes, never set by this engine
}
