package validation

import (
	"fmt"
	"sync"
	"time"

	"fund-quality-engine/internal/domain"
)

// Recorder is the single entry path for issues during a run. It assigns
// sequential issue ids, timestamps, and escalates every Critical issue into
// an alert immediately at log time. Safe for concurrent use; identifier
// assignment is serialized under the mutex.
type Recorder struct {
	mu     sync.Mutex
	now    func() time.Time
	issues []domain.Issue
	alerts []domain.Alert
}

// NewRecorder creates a recorder using the given clock.
func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Recorder{now: now}
}

// LogIssue records one issue and returns it with its assigned id.
// A Critical severity additionally creates the mirrored alert; no other
// path creates alerts.
func (r *Recorder) LogIssue(fundID string, issueType domain.IssueType, severity domain.Severity,
	fieldName, expected, actual, description string) domain.Issue {

	r.mu.Lock()
	defer r.mu.Unlock()

	issue := domain.Issue{
		IssueID:       int64(len(r.issues)) + 1,
		FundID:        fundID,
		IssueType:     issueType,
		Severity:      severity,
		FieldName:     fieldName,
		ExpectedValue: expected,
		ActualValue:   actual,
		Description:   description,
		DetectedAt:    r.now(),
		Status:        domain.IssueStatusOpen,
	}
	r.issues = append(r.issues, issue)

	if severity == domain.SeverityCritical {
		r.alerts = append(r.alerts, domain.Alert{
			AlertID:       fmt.Sprintf("ALERT-%04d", len(r.alerts)+1),
			IssueID:       issue.IssueID,
			FundID:        fundID,
			IssueType:     issueType,
			Severity:      severity,
			FieldName:     fieldName,
			ExpectedValue: expected,
			ActualValue:   actual,
			Description:   description,
			CreatedAt:     issue.DetectedAt,
		})
	}

	return issue
}

// Issues returns a copy of all recorded issues in creation order.
func (r *Recorder) Issues() []domain.Issue {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Issue, len(r.issues))
	copy(out, r.issues)
	return out
}

// Alerts returns a copy of all alerts in creation order.
func (r *Recorder) Alerts() []domain.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Alert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

// Count returns the number of recorded issues.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issues)
}

// CountsBySeverity tallies issues per severity.
func (r *Recorder) CountsBySeverity() map[domain.Severity]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.Severity]int)
	for _, issue := range r.issues {
		counts[issue.Severity]++
	}
	return counts
}

// CountsByType tallies issues per issue type.
func (r *Recorder) CountsByType() map[domain.IssueType]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.IssueType]int)
	for _, issue := range r.issues {
		counts[issue.IssueType]++
	}
	return counts
}
