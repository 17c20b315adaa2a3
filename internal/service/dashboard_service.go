package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/icl-edu/course-inquiry-api/internal/dto"
	appErrors "github.com/icl-edu/course-inquiry-api/pkg/errors"
)

type dashboardRepository interface {
	CountAll(ctx context.Context) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	CountByPaymentStatus(ctx context.Context) (map[string]int, error)
	TotalRevenue(ctx context.Context) (int64, error)
	TopCourses(ctx context.Context, limit int) ([]dto.CourseBreakdown, error)
	TopOrganizations(ctx context.Context, limit int) ([]dto.GroupCount, error)
	TopDepartments(ctx context.Context, limit int) ([]dto.GroupCount, error)
	DailyCounts(ctx context.Context, from, to time.Time) (map[string]int, error)
}

const dashboardCacheKey = "dashboard:stats"

// DashboardService composes the administrative reporting payload.
type DashboardService struct {
	repo     dashboardRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(repo dashboardRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger, now: time.Now}
}

// Stats returns the aggregate dashboard payload and reports whether it was
// served from cache.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStats, bool, error) {
	var cached dto.DashboardStats
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	stats, err := s.build(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
	return stats, false, nil
}

// Invalidate drops the cached dashboard payload. Called after writes that
// change the aggregates.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) build(ctx context.Context) (*dto.DashboardStats, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count inquiries")
	}
	today, err := s.repo.CountCreatedSince(ctx, startOfDay)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count today's inquiries")
	}
	// calendar buckets: week starts on Sunday, month on the 1st
	startOfWeek := startOfDay.AddDate(0, 0, -int(now.Weekday()))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	week, err := s.repo.CountCreatedSince(ctx, startOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count this week's inquiries")
	}
	month, err := s.repo.CountCreatedSince(ctx, startOfMonth)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count this month's inquiries")
	}

	statusBreakdown, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to break down statuses")
	}
	paymentBreakdown, err := s.repo.CountByPaymentStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to break down payment statuses")
	}

	revenue, err := s.repo.TotalRevenue(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute revenue")
	}

	topCourses, err := s.repo.TopCourses(ctx, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank courses")
	}
	topOrgs, err := s.repo.TopOrganizations(ctx, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank organizations")
	}
	topDepts, err := s.repo.TopDepartments(ctx, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank departments")
	}

	trend, err := s.trend(ctx, startOfDay)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardStats{
		TotalInquiries:        total,
		TodayInquiries:        today,
		WeekInquiries:         week,
		MonthInquiries:        month,
		ConversionRate:        rate(statusBreakdown["enrolled"], total),
		PaymentCompletionRate: rate(paymentBreakdown["completed"], total),
		TotalRevenue:          revenue,
		StatusBreakdown:       statusBreakdown,
		PaymentBreakdown:      paymentBreakdown,
		TopCourses:            topCourses,
		TopOrganizations:      topOrgs,
		TopDepartments:        topDepts,
		Last7DaysTrend:        trend,
	}, nil
}

// trend returns the last seven calendar days, today included, with days
// that saw no inquiries filled in as zero.
func (s *DashboardService) trend(ctx context.Context, startOfDay time.Time) ([]dto.DailyCount, error) {
	from := startOfDay.AddDate(0, 0, -6)
	counts, err := s.repo.DailyCounts(ctx, from, startOfDay.AddDate(0, 0, 1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiry trend")
	}

	trend := make([]dto.DailyCount, 0, 7)
	for i := 0; i < 7; i++ {
		day := from.AddDate(0, 0, i).Format("2006-01-02")
		trend = append(trend, dto.DailyCount{Date: day, Count: counts[day]})
	}
	return trend, nil
}

// rate converts part/total into a percentage rounded to two decimals.
// A zero total yields zero, not NaN.
func rate(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}
