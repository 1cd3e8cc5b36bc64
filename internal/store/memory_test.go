package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	_, ok := m.Load(ctx)
	assert.False(t, ok)

	require.NoError(t, m.Save(ctx, sampleData()))
	got, ok := m.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, sampleData().Skills, got.Skills)
	assert.Equal(t, sampleData().Achievements, got.Achievements)
	assert.Contains(t, string(m.Raw()), `"skills"`)
}

func TestMemoryStore_Corrupt(t *testing.T) {
	m := NewMemoryStore()
	m.SetRaw([]byte(`["wrong shape"]`))

	_, ok := m.Load(context.Background())
	assert.False(t, ok)
}

func TestMemoryStore_Visits(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	require.NoError(t, m.RecordVisit(ctx, Visit{HashedIP: "a", Timestamp: now}))
	require.NoError(t, m.RecordVisit(ctx, Visit{HashedIP: "a", Timestamp: now.AddDate(0, 0, -10)}))

	stats, err := m.VisitStats(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, VisitStats{TotalVisitors: 2, UniqueVisitors: 1, VisitorsToday: 1, VisitorsThisWeek: 1}, stats)

	n, err := m.PurgeVisitsBefore(ctx, now.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
