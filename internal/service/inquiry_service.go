package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/icl-edu/course-inquiry-api/internal/dto"
	"github.com/icl-edu/course-inquiry-api/internal/models"
	appErrors "github.com/icl-edu/course-inquiry-api/pkg/errors"
)

type inquiryRepository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	FindByID(ctx context.Context, id string) (*models.Inquiry, error)
	List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error)
	UpdateStatus(ctx context.Context, id string, status models.InquiryStatus) error
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus, paymentID string) error
	Delete(ctx context.Context, id string) error
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type inquiryCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// InquiryService handles inquiry use-cases.
type InquiryService struct {
	repo      inquiryRepository
	courses   inquiryCourseReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInquiryService constructs the inquiry service.
func NewInquiryService(repo inquiryRepository, courses inquiryCourseReader, validate *validator.Validate, logger *zap.Logger) *InquiryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InquiryService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// Create registers a new inquiry. The course title and price context are
// snapshotted onto the inquiry so later catalog edits do not rewrite
// submitted records.
func (s *InquiryService) Create(ctx context.Context, req dto.CreateInquiryRequest) (*models.Inquiry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid inquiry payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "course is not open for inquiries")
	}

	inquiry := &models.Inquiry{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Organization: req.Organization,
		Degree:       req.Degree,
		Department:   req.Department,
		Year:         req.Year,
		CourseID:     course.ID,
		CourseName:   course.Title,
	}
	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create inquiry")
	}

	s.logger.Info("inquiry created",
		zap.String("inquiry_id", inquiry.ID),
		zap.String("course_id", course.ID))
	return inquiry, nil
}

// List returns inquiries matching the filter plus pagination metadata.
func (s *InquiryService) List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown payment status filter")
	}

	inquiries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inquiries")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 10
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return inquiries, pagination, nil
}

// Get returns a single inquiry.
func (s *InquiryService) Get(ctx context.Context, id string) (*models.Inquiry, error) {
	inquiry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load inquiry")
	}
	return inquiry, nil
}

// UpdateStatus moves an inquiry to a new lifecycle status.
func (s *InquiryService) UpdateStatus(ctx context.Context, id string, req dto.UpdateInquiryStatusRequest) (*models.Inquiry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status is required")
	}
	status := models.InquiryStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status")
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}
	return s.Get(ctx, id)
}

// UpdatePaymentStatus changes the payment status, optionally attaching a
// gateway payment id.
func (s *InquiryService) UpdatePaymentStatus(ctx context.Context, id string, req dto.UpdatePaymentStatusRequest) (*models.Inquiry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "payment status is required")
	}
	status := models.PaymentStatus(req.PaymentStatus)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown payment status")
	}

	if err := s.repo.UpdatePaymentStatus(ctx, id, status, req.PaymentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "inquiry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment status")
	}
	return s.Get(ctx, id)
}

// Delete removes a single inquiry.
func (s *InquiryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "inquiry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete inquiry")
	}
	s.logger.Info("inquiry deleted", zap.String("inquiry_id", id))
	return nil
}

// Purge removes every inquiry created strictly before the given date.
func (s *InquiryService) Purge(ctx context.Context, req dto.PurgeInquiriesRequest) (*dto.PurgeResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "before date is required")
	}
	cutoff, err := time.Parse("2006-01-02", req.Before)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "before must be a YYYY-MM-DD date")
	}

	deleted, err := s.repo.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge inquiries")
	}
	s.logger.Info("inquiries purged",
		zap.String("before", req.Before),
		zap.Int64("deleted", deleted))
	return &dto.PurgeResult{Deleted: deleted}, nil
}
