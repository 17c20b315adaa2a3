package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icl-edu/course-inquiry-api/internal/dto"
	"github.com/icl-edu/course-inquiry-api/internal/service"
	appErrors "github.com/icl-edu/course-inquiry-api/pkg/errors"
	"github.com/icl-edu/course-inquiry-api/pkg/response"
)

// PaymentHandler exposes checkout and verification endpoints.
type PaymentHandler struct {
	payments  *service.PaymentService
	dashboard *service.DashboardService
	metrics   *service.MetricsService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService, dashboard *service.DashboardService, metrics *service.MetricsService) *PaymentHandler {
	return &PaymentHandler{payments: payments, dashboard: dashboard, metrics: metrics}
}

// CreateOrder godoc
// @Summary Open a payment order for an inquiry
// @Tags Payments
// @Produce json
// @Param id path string true "Inquiry ID"
// @Success 201 {object} response.Envelope
// @Router /inquiries/{id}/payment/order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	order, err := h.payments.CreateOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordOrderCreated()
	response.Created(c, order)
}

// VerifySignature godoc
// @Summary Verify a checkout completion signature
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.VerifySignatureRequest true "Verification payload"
// @Success 200 {object} response.Envelope
// @Router /payments/verify [post]
func (h *PaymentHandler) VerifySignature(c *gin.Context) {
	var req dto.VerifySignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.payments.VerifySignature(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordVerification("signature", result.Authentic)
	h.respond(c, result)
}

// VerifyLookup godoc
// @Summary Verify a payment by gateway lookup
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.VerifyLookupRequest true "Lookup payload"
// @Success 200 {object} response.Envelope
// @Router /payments/verify-lookup [post]
func (h *PaymentHandler) VerifyLookup(c *gin.Context) {
	var req dto.VerifyLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.payments.VerifyByLookup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordVerification("lookup", result.Authentic)
	h.respond(c, result)
}

// ManualVerify godoc
// @Summary Manually mark an inquiry's payment as verified
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Inquiry ID"
// @Param payload body dto.ManualVerifyRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /inquiries/{id}/payment/manual-verify [post]
func (h *PaymentHandler) ManualVerify(c *gin.Context) {
	var req dto.ManualVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	inquiry, err := h.payments.ManualVerify(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordVerification("manual", true)
	h.invalidate(c)
	response.JSON(c, http.StatusOK, inquiry, nil)
}

func (h *PaymentHandler) respond(c *gin.Context, result *dto.VerificationResult) {
	if !result.Authentic {
		response.Error(c, appErrors.ErrPaymentRejected)
		return
	}
	h.invalidate(c)
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *PaymentHandler) invalidate(c *gin.Context) {
	if h.dashboard != nil {
		h.dashboard.Invalidate(c.Request.Context())
	}
}
