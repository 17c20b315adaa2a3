package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/icl-edu/course-inquiry-api/internal/dto"
	"github.com/icl-edu/course-inquiry-api/internal/service"
)

type fakeDashboardStore struct {
	total int
}

func (f *fakeDashboardStore) CountAll(ctx context.Context) (int, error) { return f.total, nil }

func (f *fakeDashboardStore) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	return 2, nil
}

func (f *fakeDashboardStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	return map[string]int{"enrolled": 5, "pending": 15}, nil
}

func (f *fakeDashboardStore) CountByPaymentStatus(ctx context.Context) (map[string]int, error) {
	return map[string]int{"completed": 5, "pending": 15}, nil
}

func (f *fakeDashboardStore) TotalRevenue(ctx context.Context) (int64, error) { return 24995, nil }

func (f *fakeDashboardStore) TopCourses(ctx context.Context, limit int) ([]dto.CourseBreakdown, error) {
	return []dto.CourseBreakdown{{CourseName: "Go Bootcamp", Count: 12, Enrolled: 5}}, nil
}

func (f *fakeDashboardStore) TopOrganizations(ctx context.Context, limit int) ([]dto.GroupCount, error) {
	return nil, nil
}

func (f *fakeDashboardStore) TopDepartments(ctx context.Context, limit int) ([]dto.GroupCount, error) {
	return nil, nil
}

func (f *fakeDashboardStore) DailyCounts(ctx context.Context, from, to time.Time) (map[string]int, error) {
	return map[string]int{}, nil
}

func TestDashboardHandlerStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewDashboardService(&fakeDashboardStore{total: 20}, nil, time.Minute, zap.NewNop())
	handler := NewDashboardHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)

	handler.Stats(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data *dto.DashboardStats    `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Data)
	assert.Equal(t, 20, env.Data.TotalInquiries)
	assert.Equal(t, 25.0, env.Data.ConversionRate)
	assert.Equal(t, int64(24995), env.Data.TotalRevenue)
	assert.Len(t, env.Data.Last7DaysTrend, 7)
	assert.Equal(t, false, env.Meta["cache_hit"])
}

func TestDashboardHandlerStatsUnconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
