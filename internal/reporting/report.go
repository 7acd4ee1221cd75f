package reporting

import (
	"time"

	"fund-quality-engine/internal/domain"
)

// Report represents one validation run's summary document.
type Report struct {
	// Metadata
	GeneratedAt         time.Time
	SnapshotFingerprint string

	// Data Summary
	RecordCounts RecordCounts

	// Sufficiency gate results
	Sufficiency SufficiencySection

	// Issue breakdown
	TotalIssues    int
	SeverityCounts []SeverityCountRow // ordered Critical..Low
	TypeCounts     []TypeCountRow     // catalogue order

	// PassRatePct is funds with no issues / funds, as a percentage.
	PassRatePct float64

	// Scores (system level) with targets
	Scores []ScoreRow

	// Critical alerts raised during the run
	Alerts []domain.Alert
}

// RecordCounts describes the evaluated snapshot.
type RecordCounts struct {
	Funds       int
	Performance int
	Filings     int
}

// SufficiencySection contains the gate results the run was admitted under.
type SufficiencySection struct {
	Checks          []SufficiencyCheckRow
	AllChecksPassed bool
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SeverityCountRow is one severity's issue count.
type SeverityCountRow struct {
	Severity domain.Severity
	Count    int
}

// TypeCountRow is one rule family's issue count.
type TypeCountRow struct {
	Type  domain.IssueType
	Count int
}

// ScoreRow is one score with its target. For issue-count rows the target
// is a ceiling; for score rows it is a floor.
type ScoreRow struct {
	Name   string
	Value  float64
	Target *float64
	Met    bool
}
