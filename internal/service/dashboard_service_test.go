package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/icl-edu/course-inquiry-api/internal/dto"
)

type mockDashboardRepo struct {
	total      int
	byPeriod   []int
	sinceCalls int
	sinceArgs  []time.Time
	status     map[string]int
	payment    map[string]int
	revenue    int64
	daily      map[string]int
}

func (m *mockDashboardRepo) CountAll(ctx context.Context) (int, error) {
	return m.total, nil
}

// CountCreatedSince is called for today, week and month in that order.
func (m *mockDashboardRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	defer func() { m.sinceCalls++ }()
	m.sinceArgs = append(m.sinceArgs, since)
	if m.sinceCalls < len(m.byPeriod) {
		return m.byPeriod[m.sinceCalls], nil
	}
	return 0, nil
}

func (m *mockDashboardRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	return m.status, nil
}

func (m *mockDashboardRepo) CountByPaymentStatus(ctx context.Context) (map[string]int, error) {
	return m.payment, nil
}

func (m *mockDashboardRepo) TotalRevenue(ctx context.Context) (int64, error) {
	return m.revenue, nil
}

func (m *mockDashboardRepo) TopCourses(ctx context.Context, limit int) ([]dto.CourseBreakdown, error) {
	return []dto.CourseBreakdown{{CourseName: "Data Engineering", Count: 40, Enrolled: 10}}, nil
}

func (m *mockDashboardRepo) TopOrganizations(ctx context.Context, limit int) ([]dto.GroupCount, error) {
	return []dto.GroupCount{{Label: "IIT Madras", Count: 12}}, nil
}

func (m *mockDashboardRepo) TopDepartments(ctx context.Context, limit int) ([]dto.GroupCount, error) {
	return []dto.GroupCount{{Label: "CSE", Count: 9}}, nil
}

func (m *mockDashboardRepo) DailyCounts(ctx context.Context, from, to time.Time) (map[string]int, error) {
	return m.daily, nil
}

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
}

func TestDashboardServiceStats(t *testing.T) {
	repo := &mockDashboardRepo{
		total:    200,
		byPeriod: []int{5, 30, 90},
		status:   map[string]int{"pending": 120, "contacted": 30, "enrolled": 50},
		payment:  map[string]int{"pending": 140, "completed": 50, "failed": 10},
		revenue:  250000,
	}
	svc := NewDashboardService(repo, disabledCache(), time.Minute, zap.NewNop())

	stats, cacheHit, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.False(t, cacheHit)
	assert.Equal(t, 200, stats.TotalInquiries)
	assert.Equal(t, 5, stats.TodayInquiries)
	assert.Equal(t, 30, stats.WeekInquiries)
	assert.Equal(t, 90, stats.MonthInquiries)
	assert.InDelta(t, 25.0, stats.ConversionRate, 0.001)
	assert.InDelta(t, 25.0, stats.PaymentCompletionRate, 0.001)
	assert.Equal(t, int64(250000), stats.TotalRevenue)
	assert.Len(t, stats.TopCourses, 1)
}

func TestDashboardServiceStatsZeroInquiries(t *testing.T) {
	repo := &mockDashboardRepo{}
	svc := NewDashboardService(repo, disabledCache(), time.Minute, zap.NewNop())

	stats, _, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.ConversionRate)
	assert.Zero(t, stats.PaymentCompletionRate)
}

func TestDashboardServicePeriodBucketsAreCalendarBased(t *testing.T) {
	// Saturday afternoon: the week bucket opens on the previous Sunday,
	// the month bucket on the 1st, both at midnight.
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	repo := &mockDashboardRepo{byPeriod: []int{1, 2, 3}}
	svc := NewDashboardService(repo, disabledCache(), time.Minute, zap.NewNop())
	svc.now = func() time.Time { return now }

	_, _, err := svc.Stats(context.Background())
	require.NoError(t, err)

	require.Len(t, repo.sinceArgs, 3)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), repo.sinceArgs[0])
	assert.Equal(t, time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC), repo.sinceArgs[1])
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), repo.sinceArgs[2])
}

func TestDashboardServiceTrendZeroFills(t *testing.T) {
	now := time.Date(2026, 8, 29, 15, 0, 0, 0, time.UTC)
	repo := &mockDashboardRepo{
		daily: map[string]int{
			"2026-08-27": 3,
			"2026-08-29": 1,
		},
	}
	svc := NewDashboardService(repo, disabledCache(), time.Minute, zap.NewNop())
	svc.now = func() time.Time { return now }

	stats, _, err := svc.Stats(context.Background())
	require.NoError(t, err)

	require.Len(t, stats.Last7DaysTrend, 7)
	assert.Equal(t, "2026-08-23", stats.Last7DaysTrend[0].Date)
	assert.Equal(t, "2026-08-29", stats.Last7DaysTrend[6].Date)
	assert.Equal(t, 0, stats.Last7DaysTrend[0].Count)
	assert.Equal(t, 3, stats.Last7DaysTrend[4].Count)
	assert.Equal(t, 1, stats.Last7DaysTrend[6].Count)
}

func TestRateRounding(t *testing.T) {
	assert.InDelta(t, 33.33, rate(1, 3), 0.001)
	assert.InDelta(t, 66.67, rate(2, 3), 0.001)
	assert.Zero(t, rate(5, 0))
}
