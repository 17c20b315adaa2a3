package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icl-edu/course-inquiry-api/internal/middleware"
	"github.com/icl-edu/course-inquiry-api/internal/service"
	appErrors "github.com/icl-edu/course-inquiry-api/pkg/errors"
	"github.com/icl-edu/course-inquiry-api/pkg/response"
)

// DashboardHandler wires the reporting service to HTTP endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats godoc
// @Summary Aggregate inquiry statistics
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	if h.dashboard == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	stats, cacheHit, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}
