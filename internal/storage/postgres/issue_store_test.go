package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fund-quality-engine/internal/domain"
)

func testIssue(id int64, severity domain.Severity, issueType domain.IssueType) domain.Issue {
	return domain.Issue{
		IssueID:       id,
		FundID:        "PE-001",
		IssueType:     issueType,
		Severity:      severity,
		FieldName:     "fund_size_usd_millions",
		ExpectedValue: ">= 0",
		ActualValue:   "-100",
		Description:   "fund_size_usd_millions value -100 outside valid range",
		DetectedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Status:        domain.IssueStatusOpen,
	}
}

func TestIssueStore_ReplaceAllAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewIssueStore(pool)

	issues := []domain.Issue{
		testIssue(2, domain.SeverityCritical, domain.IssueAccuracy),
		testIssue(1, domain.SeverityHigh, domain.IssueCompleteness),
		testIssue(3, domain.SeverityMedium, domain.IssueTimeliness),
	}

	err := store.ReplaceAll(ctx, issues)
	require.NoError(t, err)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].IssueID)
	assert.Equal(t, domain.IssueCompleteness, got[0].IssueType)
	assert.Equal(t, domain.SeverityHigh, got[0].Severity)
	assert.Equal(t, domain.IssueStatusOpen, got[0].Status)
	assert.Nil(t, got[0].Resolution)

	crit, err := store.GetBySeverity(ctx, domain.SeverityCritical)
	require.NoError(t, err)
	require.Len(t, crit, 1)
	assert.Equal(t, int64(2), crit[0].IssueID)
}

func TestIssueStore_ReplaceAllClearsPriorRun(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewIssueStore(pool)

	err := store.ReplaceAll(ctx, []domain.Issue{testIssue(1, domain.SeverityHigh, domain.IssueCompleteness)})
	require.NoError(t, err)

	// A clean run replaces with an empty set
	err = store.ReplaceAll(ctx, nil)
	require.NoError(t, err)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAlertStore_ReplaceAllAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewAlertStore(pool)

	alerts := []domain.Alert{
		{
			AlertID:       "ALERT-0002",
			IssueID:       9,
			FundID:        "PE-002",
			IssueType:     domain.IssueCrossVariance,
			Severity:      domain.SeverityCritical,
			FieldName:     "fund_size_usd_millions",
			ExpectedValue: "Within 5.0% of regulatory filing",
			ActualValue:   "34.2% variance",
			Description:   "Significant variance between manager-reported ($500.00M) and regulatory filing ($750.00M): 34.2%",
			CreatedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			AlertID:   "ALERT-0001",
			IssueID:   4,
			FundID:    "PE-001",
			IssueType: domain.IssueAccuracy,
			Severity:  domain.SeverityCritical,
			CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	err := store.ReplaceAll(ctx, alerts)
	require.NoError(t, err)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ALERT-0001", got[0].AlertID)
	assert.Equal(t, int64(4), got[0].IssueID)
	assert.Equal(t, "ALERT-0002", got[1].AlertID)
	assert.Equal(t, domain.IssueCrossVariance, got[1].IssueType)
	assert.False(t, got[0].Acknowledged)
}

func TestAuditStore_AppendAndGetRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewAuditStore(pool)

	ops := []string{"ingest", "validate", "score"}
	for i, op := range ops {
		entry := &domain.AuditEntry{
			LoggedAt:        time.Date(2025, 6, 1, 12, i, 0, 0, time.UTC),
			Operation:       op,
			TableName:       "funds",
			RecordsAffected: 10 * (i + 1),
			DurationMs:      int64(100 * (i + 1)),
			Status:          domain.AuditStatusSuccess,
		}
		err := store.Append(ctx, entry)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), entry.ID)
	}

	failed := &domain.AuditEntry{
		LoggedAt:     time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC),
		Operation:    "pipeline",
		Status:       domain.AuditStatusFailed,
		ErrorMessage: ptr("sufficiency check failed"),
	}
	require.NoError(t, store.Append(ctx, failed))

	got, err := store.GetRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "pipeline", got[0].Operation)
	assert.Equal(t, domain.AuditStatusFailed, got[0].Status)
	require.NotNil(t, got[0].ErrorMessage)
	assert.Equal(t, "score", got[1].Operation)
}
