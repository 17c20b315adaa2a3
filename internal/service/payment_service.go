package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/icl-edu/course-inquiry-api/internal/dto"
	"github.com/icl-edu/course-inquiry-api/internal/gateway"
	"github.com/icl-edu/course-inquiry-api/internal/models"
	appErrors "github.com/icl-edu/course-inquiry-api/pkg/errors"
)

type paymentInquiryRepository interface {
	FindByID(ctx context.Context, id string) (*models.Inquiry, error)
	SetOrderID(ctx context.Context, id, orderID string) error
	MarkEnrolled(ctx context.Context, id, orderID, paymentID, signature, organization string) (bool, error)
	MarkPaymentFailed(ctx context.Context, id string) error
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// Payment states the gateway reports for a settled payment.
const (
	gatewayStatusCaptured   = "captured"
	gatewayStatusAuthorized = "authorized"
)

// PaymentConfig captures verification policy for the service.
type PaymentConfig struct {
	KeySecret string
	TestMode  bool
	// LookupErrorAsSuccess treats a failed gateway lookup as a successful
	// payment in test mode only. Production lookup failures always
	// surface as upstream errors.
	LookupErrorAsSuccess bool
}

// PaymentService drives the enrollment state machine: given an inquiry and
// a gateway assertion it decides the next inquiry state and persists it as
// one conditional update.
type PaymentService struct {
	repo      paymentInquiryRepository
	courses   courseReader
	gateway   gateway.Client
	cfg       PaymentConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService constructs a PaymentService. A nil gateway means the
// capability is not configured; operations then fail with ServiceUnavailable.
func NewPaymentService(repo paymentInquiryRepository, courses courseReader, gw gateway.Client, cfg PaymentConfig, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		repo:      repo,
		courses:   courses,
		gateway:   gw,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateOrder opens a gateway order for an inquiry's course at the current
// catalog price and stores the returned order id on the inquiry. Repeated
// calls overwrite the stored id.
func (s *PaymentService) CreateOrder(ctx context.Context, inquiryID string) (*dto.OrderResponse, error) {
	if s.gateway == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "payment service not configured")
	}

	inquiry, err := s.repo.FindByID(ctx, inquiryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiry")
	}

	course, err := s.courses.FindByID(ctx, inquiry.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	// Gateway amounts are in the smallest currency unit (paise for INR).
	amount := course.Price * 100
	receipt := fmt.Sprintf("receipt_inquiry_%s_%d", inquiry.ID, s.now().UnixMilli())

	order, err := s.gateway.CreateOrder(ctx, amount, "INR", receipt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to create payment order")
	}

	if err := s.repo.SetOrderID(ctx, inquiry.ID, order.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist order id")
	}

	s.logger.Info("payment order created",
		zap.String("inquiry_id", inquiry.ID),
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount))

	return &dto.OrderResponse{
		OrderID:   order.ID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Receipt:   order.Receipt,
		InquiryID: inquiry.ID,
		KeyID:     s.gateway.KeyID(),
		Prefill: dto.OrderPrefill{
			Name:    inquiry.Name,
			Email:   inquiry.Email,
			Contact: inquiry.Phone,
		},
		TestMode: s.cfg.TestMode,
	}, nil
}

// VerifySignature validates a checkout completion assertion. In test mode
// every payload is considered authentic; in production the supplied
// signature must equal the HMAC-SHA256 of "orderId|paymentId" keyed by the
// gateway shared secret.
func (s *PaymentService) VerifySignature(ctx context.Context, req dto.VerifySignatureRequest) (*dto.VerificationResult, error) {
	if s.gateway == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "payment service not configured")
	}
	req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}

	inquiry, err := s.repo.FindByID(ctx, req.InquiryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiry")
	}

	authentic := true
	if !s.cfg.TestMode {
		authentic = gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature, s.cfg.KeySecret)
	}

	if !authentic {
		if err := s.repo.MarkPaymentFailed(ctx, inquiry.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record verification failure")
		}
		s.logger.Warn("payment verification failed",
			zap.String("inquiry_id", inquiry.ID),
			zap.String("order_id", req.OrderID))
		return &dto.VerificationResult{Authentic: false, TestMode: s.cfg.TestMode}, nil
	}

	updated, err := s.enroll(ctx, inquiry.ID, req.OrderID, req.PaymentID, req.Signature, req.Organization)
	if err != nil {
		return nil, err
	}
	return &dto.VerificationResult{Authentic: true, TestMode: s.cfg.TestMode, Inquiry: updated}, nil
}

// VerifyByLookup validates a payment by fetching it from the gateway. The
// payment is authentic when its status is captured or authorized. Test mode
// skips the lookup entirely.
func (s *PaymentService) VerifyByLookup(ctx context.Context, req dto.VerifyLookupRequest) (*dto.VerificationResult, error) {
	if s.gateway == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "payment service not configured")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "payment id and inquiry id are required")
	}

	inquiry, err := s.repo.FindByID(ctx, req.InquiryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiry")
	}

	authentic, lookupErr := s.lookupAuthentic(ctx, req.PaymentID)
	if lookupErr != nil {
		if s.cfg.TestMode && s.cfg.LookupErrorAsSuccess {
			// Sandbox gateways fail lookups for payments that went
			// through; the flag keeps test flows moving. Production
			// lookup errors always surface.
			s.logger.Warn("gateway lookup failed, treating as success in test mode",
				zap.String("payment_id", req.PaymentID), zap.Error(lookupErr))
			authentic = true
		} else {
			return nil, appErrors.Wrap(lookupErr, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "could not verify payment with gateway")
		}
	}

	if !authentic {
		if err := s.repo.MarkPaymentFailed(ctx, inquiry.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record verification failure")
		}
		s.logger.Warn("payment lookup rejected", zap.String("payment_id", req.PaymentID))
		return &dto.VerificationResult{Authentic: false, TestMode: s.cfg.TestMode}, nil
	}

	updated, err := s.enroll(ctx, inquiry.ID, "", req.PaymentID, "", req.Organization)
	if err != nil {
		return nil, err
	}
	return &dto.VerificationResult{Authentic: true, TestMode: s.cfg.TestMode, Inquiry: updated}, nil
}

// lookupAuthentic decides authenticity for the lookup path. Test mode is
// unconditionally authentic without touching the gateway.
func (s *PaymentService) lookupAuthentic(ctx context.Context, paymentID string) (bool, error) {
	if s.cfg.TestMode {
		return true, nil
	}
	payment, err := s.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return false, err
	}
	return payment.Status == gatewayStatusCaptured || payment.Status == gatewayStatusAuthorized, nil
}

// ManualVerify is the administrative escape hatch: it enrolls the inquiry
// without any gateway interaction.
func (s *PaymentService) ManualVerify(ctx context.Context, inquiryID string, req dto.ManualVerifyRequest) (*models.Inquiry, error) {
	if _, err := s.repo.FindByID(ctx, inquiryID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiry")
	}

	s.logger.Info("payment manually verified",
		zap.String("inquiry_id", inquiryID),
		zap.String("notes", req.Notes))
	return s.enroll(ctx, inquiryID, "", req.PaymentID, "", "")
}

// enroll applies the successful-verification transition. The repository
// guard (status <> enrolled at write time) makes a duplicate verification a
// no-op instead of a lost update.
func (s *PaymentService) enroll(ctx context.Context, inquiryID, orderID, paymentID, signature, organization string) (*models.Inquiry, error) {
	applied, err := s.repo.MarkEnrolled(ctx, inquiryID, orderID, paymentID, signature, organization)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll inquiry")
	}
	if !applied {
		s.logger.Info("inquiry already enrolled, verification replay ignored", zap.String("inquiry_id", inquiryID))
	}

	inquiry, err := s.repo.FindByID(ctx, inquiryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload inquiry")
	}
	return inquiry, nil
}
