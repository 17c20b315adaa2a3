package service

import (
	"context"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/icl-edu/course-inquiry-api/internal/dto"
	"github.com/icl-edu/course-inquiry-api/internal/mailer"
	"github.com/icl-edu/course-inquiry-api/internal/models"
	appErrors "github.com/icl-edu/course-inquiry-api/pkg/errors"
)

type emailInquiryRepository interface {
	FindByID(ctx context.Context, id string) (*models.Inquiry, error)
	MarkEmailSent(ctx context.Context, id string, sentAt time.Time) (bool, error)
	ListPendingEmails(ctx context.Context, limit, offset int) ([]dto.PendingRecipient, int, error)
	PendingEmailIDs(ctx context.Context) ([]string, error)
	CountEnrolledCompleted(ctx context.Context) (int, error)
	CountEmailsSent(ctx context.Context) (int, error)
	CountEmailsSentSince(ctx context.Context, since time.Time) (int, error)
}

// EmailConfig captures dispatch policy for the service.
type EmailConfig struct {
	// BatchEnabled gates the whole capability. It is forced off in
	// production until deliverability is signed off.
	BatchEnabled bool
	PacingDelay  time.Duration
}

// EmailService dispatches enrollment confirmation emails. Sends are
// sequential with a pacing delay between them so the SMTP relay is never
// burst-loaded, and each item fails independently of the rest.
type EmailService struct {
	repo      emailInquiryRepository
	sender    mailer.Sender
	cfg       EmailConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	sleep     func(time.Duration)
}

// NewEmailService constructs the email service. A nil sender means SMTP is
// not configured; dispatch operations then fail with ServiceUnavailable.
func NewEmailService(repo emailInquiryRepository, sender mailer.Sender, cfg EmailConfig, validate *validator.Validate, logger *zap.Logger) *EmailService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailService{
		repo:      repo,
		sender:    sender,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// SendBatch dispatches confirmation emails to the selected inquiries.
func (s *EmailService) SendBatch(ctx context.Context, req dto.BatchEmailRequest) (*dto.BatchEmailResult, error) {
	if !s.cfg.BatchEnabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "batch email dispatch is disabled")
	}
	if s.sender == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "email service not configured")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "between 1 and 100 inquiry ids are required")
	}
	return s.dispatch(ctx, req.InquiryIDs)
}

// SendAll dispatches to every eligible inquiry. With DryRun set it only
// reports who would receive an email.
func (s *EmailService) SendAll(ctx context.Context, req dto.SendAllRequest) (*dto.BatchEmailResult, error) {
	if !s.cfg.BatchEnabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "batch email dispatch is disabled")
	}
	if s.sender == nil && !req.DryRun {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "email service not configured")
	}

	ids, err := s.repo.PendingEmailIDs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending recipients")
	}

	if req.DryRun {
		result := &dto.BatchEmailResult{Total: len(ids), Sent: []dto.SentEmail{}, Failed: []dto.FailedEmail{}, AlreadySent: []dto.AlreadySentEmail{}}
		for _, id := range ids {
			inquiry, err := s.repo.FindByID(ctx, id)
			if err != nil {
				result.Failed = append(result.Failed, dto.FailedEmail{ID: id, Reason: "inquiry not found"})
				continue
			}
			result.Sent = append(result.Sent, dto.SentEmail{
				ID:     inquiry.ID,
				Email:  inquiry.Email,
				Name:   inquiry.Name,
				Course: inquiry.CourseName,
			})
		}
		return result, nil
	}
	return s.dispatch(ctx, ids)
}

// Pending lists eligible inquiries that have not received their
// confirmation email yet.
func (s *EmailService) Pending(ctx context.Context, page, pageSize int) ([]dto.PendingRecipient, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	recipients, total, err := s.repo.ListPendingEmails(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending recipients")
	}
	return recipients, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Stats summarises overall confirmation-email progress.
func (s *EmailService) Stats(ctx context.Context) (*dto.EmailStats, error) {
	enrolled, err := s.repo.CountEnrolledCompleted(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrolled inquiries")
	}
	sent, err := s.repo.CountEmailsSent(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sent emails")
	}
	recent, err := s.repo.CountEmailsSentSince(ctx, s.now().AddDate(0, 0, -7))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count recent emails")
	}

	rate := 0.0
	if enrolled > 0 {
		rate = math.Round(float64(sent)/float64(enrolled)*10000) / 100
	}
	return &dto.EmailStats{
		TotalEnrolled:     enrolled,
		EmailsSent:        sent,
		EmailsPending:     enrolled - sent,
		RecentEmails7Days: recent,
		SuccessRate:       rate,
	}, nil
}

func (s *EmailService) dispatch(ctx context.Context, ids []string) (*dto.BatchEmailResult, error) {
	result := &dto.BatchEmailResult{
		Total:       len(ids),
		Sent:        []dto.SentEmail{},
		Failed:      []dto.FailedEmail{},
		AlreadySent: []dto.AlreadySentEmail{},
	}

	for i, id := range ids {
		if i > 0 && s.cfg.PacingDelay > 0 {
			s.sleep(s.cfg.PacingDelay)
		}
		if err := ctx.Err(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "dispatch interrupted")
		}

		inquiry, err := s.repo.FindByID(ctx, id)
		if err != nil {
			result.Failed = append(result.Failed, dto.FailedEmail{ID: id, Reason: "inquiry not found"})
			continue
		}
		if inquiry.Status != models.InquiryStatusEnrolled || inquiry.PaymentStatus != models.PaymentStatusCompleted {
			result.Failed = append(result.Failed, dto.FailedEmail{ID: id, Email: inquiry.Email, Reason: "inquiry is not an enrolled, paid record"})
			continue
		}
		if inquiry.EnrollmentEmailSent {
			result.AlreadySent = append(result.AlreadySent, dto.AlreadySentEmail{
				ID:     inquiry.ID,
				Email:  inquiry.Email,
				SentAt: inquiry.EnrollmentEmailSentAt,
			})
			continue
		}

		body, err := mailer.RenderEnrollmentEmail(mailer.EnrollmentEmail{
			Name:         inquiry.Name,
			CourseName:   inquiry.CourseName,
			Organization: inquiry.Organization,
		})
		if err != nil {
			result.Failed = append(result.Failed, dto.FailedEmail{ID: id, Email: inquiry.Email, Reason: "failed to render email"})
			continue
		}

		if err := s.sender.Send(inquiry.Email, mailer.EnrollmentSubject(inquiry.CourseName), body); err != nil {
			s.logger.Warn("confirmation email failed",
				zap.String("inquiry_id", inquiry.ID),
				zap.Error(err))
			result.Failed = append(result.Failed, dto.FailedEmail{ID: id, Email: inquiry.Email, Reason: err.Error()})
			continue
		}

		// Delivery happened even if the flag write races another worker;
		// a false return just means someone else recorded it first.
		if _, err := s.repo.MarkEmailSent(ctx, inquiry.ID, s.now()); err != nil {
			s.logger.Error("email sent but flag update failed",
				zap.String("inquiry_id", inquiry.ID),
				zap.Error(err))
		}
		result.Sent = append(result.Sent, dto.SentEmail{
			ID:     inquiry.ID,
			Email:  inquiry.Email,
			Name:   inquiry.Name,
			Course: inquiry.CourseName,
		})
	}

	s.logger.Info("email batch finished",
		zap.Int("total", result.Total),
		zap.Int("sent", len(result.Sent)),
		zap.Int("failed", len(result.Failed)),
		zap.Int("already_sent", len(result.AlreadySent)))
	return result, nil
}
