package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/icl-edu/course-inquiry-api/internal/dto"
	"github.com/icl-edu/course-inquiry-api/internal/models"
	appErrors "github.com/icl-edu/course-inquiry-api/pkg/errors"
)

type mockEmailRepo struct {
	inquiries  map[string]models.Inquiry
	marked     []string
	pendingIDs []string
	enrolled   int
	sent       int
	recent     int
}

func (m *mockEmailRepo) FindByID(ctx context.Context, id string) (*models.Inquiry, error) {
	if q, ok := m.inquiries[id]; ok {
		return &q, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEmailRepo) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	q, ok := m.inquiries[id]
	if !ok {
		return false, sql.ErrNoRows
	}
	if q.EnrollmentEmailSent {
		return false, nil
	}
	q.EnrollmentEmailSent = true
	q.EnrollmentEmailSentAt = &sentAt
	m.inquiries[id] = q
	m.marked = append(m.marked, id)
	return true, nil
}

func (m *mockEmailRepo) ListPendingEmails(ctx context.Context, limit, offset int) ([]dto.PendingRecipient, int, error) {
	var out []dto.PendingRecipient
	for _, id := range m.pendingIDs {
		q := m.inquiries[id]
		out = append(out, dto.PendingRecipient{ID: q.ID, Name: q.Name, Email: q.Email, CourseName: q.CourseName})
	}
	return out, len(out), nil
}

func (m *mockEmailRepo) PendingEmailIDs(ctx context.Context) ([]string, error) {
	return m.pendingIDs, nil
}

func (m *mockEmailRepo) CountEnrolledCompleted(ctx context.Context) (int, error) {
	return m.enrolled, nil
}

func (m *mockEmailRepo) CountEmailsSent(ctx context.Context) (int, error) {
	return m.sent, nil
}

func (m *mockEmailRepo) CountEmailsSentSince(ctx context.Context, since time.Time) (int, error) {
	return m.recent, nil
}

type mockSender struct {
	sent    []string
	failFor map[string]error
}

func (m *mockSender) Send(to, subject, html string) error {
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sent = append(m.sent, to)
	return nil
}

func enrolledInquiry(id, email string) models.Inquiry {
	return models.Inquiry{
		ID:            id,
		Name:          "Ravi Kumar",
		Email:         email,
		CourseName:    "Cloud Fundamentals",
		Status:        models.InquiryStatusEnrolled,
		PaymentStatus: models.PaymentStatusCompleted,
	}
}

func newEmailService(repo *mockEmailRepo, sender *mockSender, cfg EmailConfig) *EmailService {
	svc := NewEmailService(repo, sender, cfg, validator.New(), zap.NewNop())
	svc.sleep = func(time.Duration) {}
	return svc
}

func TestEmailServiceSendBatch(t *testing.T) {
	repo := &mockEmailRepo{inquiries: map[string]models.Inquiry{
		"a": enrolledInquiry("a", "a@example.com"),
		"b": enrolledInquiry("b", "b@example.com"),
	}}
	sender := &mockSender{}
	svc := newEmailService(repo, sender, EmailConfig{BatchEnabled: true})

	result, err := svc.SendBatch(context.Background(), dto.BatchEmailRequest{InquiryIDs: []string{"a", "b"}})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Len(t, result.Sent, 2)
	assert.Empty(t, result.Failed)
	assert.Empty(t, result.AlreadySent)
	assert.ElementsMatch(t, []string{"a", "b"}, repo.marked)
}

func TestEmailServiceSendBatchDisabled(t *testing.T) {
	svc := newEmailService(&mockEmailRepo{}, &mockSender{}, EmailConfig{BatchEnabled: false})

	_, err := svc.SendBatch(context.Background(), dto.BatchEmailRequest{InquiryIDs: []string{"a"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEmailServiceSendBatchValidation(t *testing.T) {
	svc := newEmailService(&mockEmailRepo{}, &mockSender{}, EmailConfig{BatchEnabled: true})

	_, err := svc.SendBatch(context.Background(), dto.BatchEmailRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	oversized := make([]string, 101)
	for i := range oversized {
		oversized[i] = "x"
	}
	_, err = svc.SendBatch(context.Background(), dto.BatchEmailRequest{InquiryIDs: oversized})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEmailServiceSendBatchSkipsIneligible(t *testing.T) {
	notPaid := enrolledInquiry("b", "b@example.com")
	notPaid.PaymentStatus = models.PaymentStatusPending

	repo := &mockEmailRepo{inquiries: map[string]models.Inquiry{
		"a": enrolledInquiry("a", "a@example.com"),
		"b": notPaid,
	}}
	sender := &mockSender{}
	svc := newEmailService(repo, sender, EmailConfig{BatchEnabled: true})

	result, err := svc.SendBatch(context.Background(), dto.BatchEmailRequest{InquiryIDs: []string{"a", "b", "missing"}})
	require.NoError(t, err)

	assert.Len(t, result.Sent, 1)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, []string{"a@example.com"}, sender.sent)
}

func TestEmailServiceSendBatchAlreadySent(t *testing.T) {
	sentAt := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	done := enrolledInquiry("a", "a@example.com")
	done.EnrollmentEmailSent = true
	done.EnrollmentEmailSentAt = &sentAt

	repo := &mockEmailRepo{inquiries: map[string]models.Inquiry{"a": done}}
	sender := &mockSender{}
	svc := newEmailService(repo, sender, EmailConfig{BatchEnabled: true})

	result, err := svc.SendBatch(context.Background(), dto.BatchEmailRequest{InquiryIDs: []string{"a"}})
	require.NoError(t, err)

	require.Len(t, result.AlreadySent, 1)
	assert.Equal(t, &sentAt, result.AlreadySent[0].SentAt)
	assert.Empty(t, sender.sent)
}

func TestEmailServiceSendBatchFailureIsolation(t *testing.T) {
	repo := &mockEmailRepo{inquiries: map[string]models.Inquiry{
		"a": enrolledInquiry("a", "a@example.com"),
		"b": enrolledInquiry("b", "b@example.com"),
		"c": enrolledInquiry("c", "c@example.com"),
	}}
	sender := &mockSender{failFor: map[string]error{"b@example.com": errors.New("relay refused")}}
	svc := newEmailService(repo, sender, EmailConfig{BatchEnabled: true})

	result, err := svc.SendBatch(context.Background(), dto.BatchEmailRequest{InquiryIDs: []string{"a", "b", "c"}})
	require.NoError(t, err)

	assert.Len(t, result.Sent, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "b", result.Failed[0].ID)
	assert.Equal(t, "relay refused", result.Failed[0].Reason)
	assert.ElementsMatch(t, []string{"a", "c"}, repo.marked)
}

func TestEmailServiceSendBatchNoSender(t *testing.T) {
	svc := NewEmailService(&mockEmailRepo{}, nil, EmailConfig{BatchEnabled: true}, validator.New(), zap.NewNop())

	_, err := svc.SendBatch(context.Background(), dto.BatchEmailRequest{InquiryIDs: []string{"a"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrServiceUnavailable.Code, appErrors.FromError(err).Code)
}

func TestEmailServiceSendAllDryRun(t *testing.T) {
	repo := &mockEmailRepo{
		inquiries: map[string]models.Inquiry{
			"a": enrolledInquiry("a", "a@example.com"),
			"b": enrolledInquiry("b", "b@example.com"),
		},
		pendingIDs: []string{"a", "b"},
	}
	sender := &mockSender{}
	svc := newEmailService(repo, sender, EmailConfig{BatchEnabled: true})

	result, err := svc.SendAll(context.Background(), dto.SendAllRequest{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Len(t, result.Sent, 2)
	assert.Empty(t, sender.sent, "dry run must not deliver anything")
	assert.Empty(t, repo.marked)
}

func TestEmailServiceSendAllDryRunReportsMissingInquiries(t *testing.T) {
	repo := &mockEmailRepo{
		inquiries: map[string]models.Inquiry{
			"a": enrolledInquiry("a", "a@example.com"),
		},
		pendingIDs: []string{"a", "gone"},
	}
	svc := newEmailService(repo, &mockSender{}, EmailConfig{BatchEnabled: true})

	result, err := svc.SendAll(context.Background(), dto.SendAllRequest{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Len(t, result.Sent, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "gone", result.Failed[0].ID)
	assert.Equal(t, "inquiry not found", result.Failed[0].Reason)
}

func TestEmailServiceSendAll(t *testing.T) {
	repo := &mockEmailRepo{
		inquiries: map[string]models.Inquiry{
			"a": enrolledInquiry("a", "a@example.com"),
		},
		pendingIDs: []string{"a"},
	}
	sender := &mockSender{}
	svc := newEmailService(repo, sender, EmailConfig{BatchEnabled: true})

	result, err := svc.SendAll(context.Background(), dto.SendAllRequest{})
	require.NoError(t, err)

	assert.Len(t, result.Sent, 1)
	assert.Equal(t, []string{"a@example.com"}, sender.sent)
}

func TestEmailServiceStats(t *testing.T) {
	repo := &mockEmailRepo{enrolled: 8, sent: 6, recent: 2}
	svc := newEmailService(repo, &mockSender{}, EmailConfig{BatchEnabled: true})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, stats.TotalEnrolled)
	assert.Equal(t, 6, stats.EmailsSent)
	assert.Equal(t, 2, stats.EmailsPending)
	assert.Equal(t, 2, stats.RecentEmails7Days)
	assert.InDelta(t, 75.0, stats.SuccessRate, 0.001)
}

func TestEmailServiceStatsZeroEnrolled(t *testing.T) {
	svc := newEmailService(&mockEmailRepo{}, &mockSender{}, EmailConfig{BatchEnabled: true})

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.SuccessRate)
}
