package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/icl-edu/course-inquiry-api/internal/dto"
	"github.com/icl-edu/course-inquiry-api/internal/service"
	appErrors "github.com/icl-edu/course-inquiry-api/pkg/errors"
	"github.com/icl-edu/course-inquiry-api/pkg/response"
)

// EmailHandler exposes enrollment-email endpoints.
type EmailHandler struct {
	emails  *service.EmailService
	metrics *service.MetricsService
}

// NewEmailHandler constructs EmailHandler.
func NewEmailHandler(emails *service.EmailService, metrics *service.MetricsService) *EmailHandler {
	return &EmailHandler{emails: emails, metrics: metrics}
}

// SendBatch godoc
// @Summary Send confirmation emails to selected inquiries
// @Tags Emails
// @Accept json
// @Produce json
// @Param payload body dto.BatchEmailRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /emails/batch [post]
func (h *EmailHandler) SendBatch(c *gin.Context) {
	var req dto.BatchEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.emails.SendBatch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.record(result)
	response.JSON(c, http.StatusOK, result, nil)
}

// SendAll godoc
// @Summary Send confirmation emails to every eligible inquiry
// @Tags Emails
// @Accept json
// @Produce json
// @Param payload body dto.SendAllRequest false "Options"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /emails/send-all [post]
func (h *EmailHandler) SendAll(c *gin.Context) {
	var req dto.SendAllRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	result, err := h.emails.SendAll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !req.DryRun {
		h.record(result)
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Pending godoc
// @Summary List inquiries awaiting their confirmation email
// @Tags Emails
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /emails/pending [get]
func (h *EmailHandler) Pending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	recipients, pagination, err := h.emails.Pending(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, recipients, pagination)
}

// Stats godoc
// @Summary Confirmation email delivery statistics
// @Tags Emails
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /emails/stats [get]
func (h *EmailHandler) Stats(c *gin.Context) {
	stats, err := h.emails.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

func (h *EmailHandler) record(result *dto.BatchEmailResult) {
	for range result.Sent {
		h.metrics.RecordEmail("sent")
	}
	for range result.Failed {
		h.metrics.RecordEmail("failed")
	}
	for range result.AlreadySent {
		h.metrics.RecordEmail("already_sent")
	}
}
