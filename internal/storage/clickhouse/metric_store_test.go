package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fund-quality-engine/internal/domain"
)

func metricDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMetricStore_AppendAndGetAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMetricStore(conn)

	calculatedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	metrics := []domain.Metric{
		{
			MetricDate:   metricDate(2025, 6, 1),
			MetricName:   domain.MetricOverall,
			MetricValue:  88.52,
			TargetValue:  ptr(90.0),
			EntityType:   domain.EntitySystem,
			EntityName:   domain.EntityNameSystem,
			CalculatedAt: calculatedAt,
		},
		{
			MetricDate:   metricDate(2025, 6, 1),
			MetricName:   domain.MetricCompleteness,
			MetricValue:  93.1,
			TargetValue:  ptr(95.0),
			EntityType:   domain.EntityFundType,
			EntityName:   "Buyout",
			CalculatedAt: calculatedAt,
		},
		{
			MetricDate:   metricDate(2025, 6, 1),
			MetricName:   domain.MetricManagerTier,
			MetricValue:  2,
			TargetValue:  nil,
			EntityType:   domain.EntityManager,
			EntityName:   "Alpha Capital",
			CalculatedAt: calculatedAt,
		},
	}

	err := store.Append(ctx, metrics)
	require.NoError(t, err)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by metric_date, metric_name, entity_type, entity_name
	assert.Equal(t, domain.MetricCompleteness, got[0].MetricName)
	assert.Equal(t, domain.MetricManagerTier, got[1].MetricName)
	assert.Equal(t, domain.MetricOverall, got[2].MetricName)

	// Nullable target round-trip
	assert.Nil(t, got[1].TargetValue)
	require.NotNil(t, got[2].TargetValue)
	assert.InDelta(t, 90.0, *got[2].TargetValue, 0.0001)
	assert.Equal(t, domain.EntitySystem, got[2].EntityType)
}

func TestMetricStore_HistoryAccumulates(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMetricStore(conn)

	for i, value := range []float64{88.0, 89.5, 91.2} {
		m := domain.Metric{
			MetricDate:   metricDate(2025, 6, 1+i),
			MetricName:   domain.MetricOverall,
			MetricValue:  value,
			EntityType:   domain.EntitySystem,
			EntityName:   domain.EntityNameSystem,
			CalculatedAt: time.Date(2025, 6, 1+i, 12, 0, 0, 0, time.UTC),
		}
		require.NoError(t, store.Append(ctx, []domain.Metric{m}))
	}

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3, "appends must accumulate, not replace")

	latest, err := store.GetLatestByName(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.InDelta(t, 91.2, latest[0].MetricValue, 0.0001)
	assert.True(t, latest[0].MetricDate.Equal(metricDate(2025, 6, 3)))
}

func TestMetricStore_AppendEmptyIsNoop(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewMetricStore(conn)

	require.NoError(t, store.Append(ctx, nil))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
