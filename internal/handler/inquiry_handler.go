package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/icl-edu/course-inquiry-api/internal/dto"
	"github.com/icl-edu/course-inquiry-api/internal/models"
	"github.com/icl-edu/course-inquiry-api/internal/service"
	appErrors "github.com/icl-edu/course-inquiry-api/pkg/errors"
	"github.com/icl-edu/course-inquiry-api/pkg/response"
)

// InquiryHandler exposes inquiry endpoints.
type InquiryHandler struct {
	inquiries *service.InquiryService
	exports   *service.ExportService
	dashboard *service.DashboardService
}

// NewInquiryHandler constructs InquiryHandler.
func NewInquiryHandler(inquiries *service.InquiryService, exports *service.ExportService, dashboard *service.DashboardService) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries, exports: exports, dashboard: dashboard}
}

// Create godoc
// @Summary Submit a course inquiry
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param payload body dto.CreateInquiryRequest true "Inquiry payload"
// @Success 201 {object} response.Envelope
// @Router /inquiries [post]
func (h *InquiryHandler) Create(c *gin.Context) {
	var req dto.CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	inquiry, err := h.inquiries.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c)
	response.Created(c, inquiry)
}

// List godoc
// @Summary List inquiries
// @Tags Inquiries
// @Produce json
// @Param status query string false "Filter by status"
// @Param paymentStatus query string false "Filter by payment status"
// @Param course query string false "Filter by course name"
// @Param search query string false "Search name, email, phone or organization"
// @Param startDate query string false "Created on or after (YYYY-MM-DD)"
// @Param endDate query string false "Created before (YYYY-MM-DD, exclusive)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /inquiries [get]
func (h *InquiryHandler) List(c *gin.Context) {
	filter, err := parseInquiryFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	inquiries, pagination, err := h.inquiries.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inquiries, pagination)
}

// Get godoc
// @Summary Get inquiry detail
// @Tags Inquiries
// @Produce json
// @Param id path string true "Inquiry ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /inquiries/{id} [get]
func (h *InquiryHandler) Get(c *gin.Context) {
	inquiry, err := h.inquiries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inquiry, nil)
}

// UpdateStatus godoc
// @Summary Update inquiry status
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param id path string true "Inquiry ID"
// @Param payload body dto.UpdateInquiryStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /inquiries/{id}/status [patch]
func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateInquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	inquiry, err := h.inquiries.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c)
	response.JSON(c, http.StatusOK, inquiry, nil)
}

// UpdatePaymentStatus godoc
// @Summary Update inquiry payment status
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param id path string true "Inquiry ID"
// @Param payload body dto.UpdatePaymentStatusRequest true "Payment status payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /inquiries/{id}/payment-status [patch]
func (h *InquiryHandler) UpdatePaymentStatus(c *gin.Context) {
	var req dto.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	inquiry, err := h.inquiries.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c)
	response.JSON(c, http.StatusOK, inquiry, nil)
}

// Delete godoc
// @Summary Delete an inquiry
// @Tags Inquiries
// @Param id path string true "Inquiry ID"
// @Success 204
// @Security BearerAuth
// @Router /inquiries/{id} [delete]
func (h *InquiryHandler) Delete(c *gin.Context) {
	if err := h.inquiries.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c)
	response.NoContent(c)
}

// Purge godoc
// @Summary Purge inquiries created before a date
// @Tags Inquiries
// @Accept json
// @Produce json
// @Param payload body dto.PurgeInquiriesRequest true "Purge payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /inquiries/purge [post]
func (h *InquiryHandler) Purge(c *gin.Context) {
	var req dto.PurgeInquiriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.inquiries.Purge(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.invalidate(c)
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export filtered inquiries
// @Tags Inquiries
// @Produce octet-stream
// @Param format query string false "csv or pdf, defaults to csv"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /inquiries/export [get]
func (h *InquiryHandler) Export(c *gin.Context) {
	filter, err := parseInquiryFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	result, err := h.exports.Generate(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}

func (h *InquiryHandler) invalidate(c *gin.Context) {
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
}

func parseInquiryFilter(c *gin.Context) (models.InquiryFilter, error) {
	var filter models.InquiryFilter
	filter.Status = models.InquiryStatus(c.Query("status"))
	filter.PaymentStatus = models.PaymentStatus(c.Query("paymentStatus"))
	filter.CourseName = strings.TrimSpace(c.Query("course"))
	filter.Search = strings.TrimSpace(c.Query("search"))

	if raw := c.Query("startDate"); raw != "" {
		ts, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "startDate must be a YYYY-MM-DD date")
		}
		filter.StartDate = &ts
	}
	if raw := c.Query("endDate"); raw != "" {
		ts, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "endDate must be a YYYY-MM-DD date")
		}
		// inclusive end date: compare against the start of the next day
		next := ts.AddDate(0, 0, 1)
		filter.EndDate = &next
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")
	return filter, nil
}
