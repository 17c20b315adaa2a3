package service

import (
	"context"
	"database/sql"
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

type mockInquiryRepo struct {
	inquiries map[string]models.Inquiry
	created   *models.Inquiry
	deleted   []string
	purgedAt  *time.Time
	purged    int64
}

func (m *mockInquiryRepo) Create(ctx context.Context, inquiry *models.Inquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = "new-inquiry"
	}
	inquiry.Status = models.InquiryStatusPending
	inquiry.PaymentStatus = models.PaymentStatusPending
	if m.inquiries == nil {
		m.inquiries = make(map[string]models.Inquiry)
	}
	m.inquiries[inquiry.ID] = *inquiry
	m.created = inquiry
	return nil
}

func (m *mockInquiryRepo) FindByID(ctx context.Context, id string) (*models.Inquiry, error) {
	if q, ok := m.inquiries[id]; ok {
		return &q, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockInquiryRepo) List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error) {
	var out []models.Inquiry
	for _, q := range m.inquiries {
		out = append(out, q)
	}
	return out, len(out), nil
}

func (m *mockInquiryRepo) UpdateStatus(ctx context.Context, id string, status models.InquiryStatus) error {
	q, ok := m.inquiries[id]
	if !ok {
		return sql.ErrNoRows
	}
	q.Status = status
	m.inquiries[id] = q
	return nil
}

func (m *mockInquiryRepo) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus, paymentID string) error {
	q, ok := m.inquiries[id]
	if !ok {
		return sql.ErrNoRows
	}
	q.PaymentStatus = status
	if paymentID != "" {
		q.RazorpayPaymentID = &paymentID
	}
	m.inquiries[id] = q
	return nil
}

func (m *mockInquiryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.inquiries[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.inquiries, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockInquiryRepo) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.purgedAt = &cutoff
	return m.purged, nil
}

func validCreateRequest() dto.CreateInquiryRequest {
	return dto.CreateInquiryRequest{
		Name:         "Asha Rao",
		Email:        "asha@example.com",
		Phone:        "9876543210",
		Organization: "ICL",
		Degree:       "BTech",
		Department:   "CSE",
		Year:         "2026",
		CourseID:     "course-1",
	}
}

func newInquiryService(repo *mockInquiryRepo, courses *mockCourseReader) *InquiryService {
	return NewInquiryService(repo, courses, validator.New(), zap.NewNop())
}

func TestInquiryServiceCreate(t *testing.T) {
	repo := &mockInquiryRepo{}
	courses := &mockCourseReader{courses: map[string]models.Course{"course-1": {ID: "course-1", Title: "Data Engineering", Active: true}}}
	svc := newInquiryService(repo, courses)

	inquiry, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "Data Engineering", inquiry.CourseName, "course title is snapshotted")
	assert.Equal(t, models.InquiryStatusPending, inquiry.Status)
	assert.Equal(t, models.PaymentStatusPending, inquiry.PaymentStatus)
}

func TestInquiryServiceCreateValidation(t *testing.T) {
	svc := newInquiryService(&mockInquiryRepo{}, &mockCourseReader{})

	req := validCreateRequest()
	req.Email = "not-an-email"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestInquiryServiceCreateRequiresAllFields(t *testing.T) {
	repo := &mockInquiryRepo{}
	courses := &mockCourseReader{courses: map[string]models.Course{"course-1": {ID: "course-1", Title: "Data Engineering", Active: true}}}
	svc := newInquiryService(repo, courses)

	blank := func(mutate func(*dto.CreateInquiryRequest)) dto.CreateInquiryRequest {
		req := validCreateRequest()
		mutate(&req)
		return req
	}

	cases := map[string]dto.CreateInquiryRequest{
		"organization": blank(func(r *dto.CreateInquiryRequest) { r.Organization = "" }),
		"degree":       blank(func(r *dto.CreateInquiryRequest) { r.Degree = "" }),
		"department":   blank(func(r *dto.CreateInquiryRequest) { r.Department = "" }),
		"year":         blank(func(r *dto.CreateInquiryRequest) { r.Year = "" }),
	}
	for field, req := range cases {
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err, field)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code, field)
	}
	assert.Empty(t, repo.inquiries, "nothing may persist when a field is missing")
}

func TestInquiryServiceCreateUnknownCourse(t *testing.T) {
	svc := newInquiryService(&mockInquiryRepo{}, &mockCourseReader{})

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestInquiryServiceCreateInactiveCourse(t *testing.T) {
	courses := &mockCourseReader{courses: map[string]models.Course{"course-1": {ID: "course-1", Active: false}}}
	svc := newInquiryService(&mockInquiryRepo{}, courses)

	_, err := svc.Create(context.Background(), validCreateRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestInquiryServiceListRejectsUnknownFilter(t *testing.T) {
	svc := newInquiryService(&mockInquiryRepo{}, &mockCourseReader{})

	_, _, err := svc.List(context.Background(), models.InquiryFilter{Status: "bogus"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestInquiryServiceUpdateStatus(t *testing.T) {
	repo := &mockInquiryRepo{inquiries: map[string]models.Inquiry{"q1": {ID: "q1", Status: models.InquiryStatusPending}}}
	svc := newInquiryService(repo, &mockCourseReader{})

	inquiry, err := svc.UpdateStatus(context.Background(), "q1", dto.UpdateInquiryStatusRequest{Status: "contacted"})
	require.NoError(t, err)
	assert.Equal(t, models.InquiryStatusContacted, inquiry.Status)

	_, err = svc.UpdateStatus(context.Background(), "q1", dto.UpdateInquiryStatusRequest{Status: "bogus"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestInquiryServiceUpdatePaymentStatus(t *testing.T) {
	repo := &mockInquiryRepo{inquiries: map[string]models.Inquiry{"q1": {ID: "q1", PaymentStatus: models.PaymentStatusPending}}}
	svc := newInquiryService(repo, &mockCourseReader{})

	inquiry, err := svc.UpdatePaymentStatus(context.Background(), "q1", dto.UpdatePaymentStatusRequest{PaymentStatus: "completed", PaymentID: "pay_1"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, inquiry.PaymentStatus)
	require.NotNil(t, inquiry.RazorpayPaymentID)
	assert.Equal(t, "pay_1", *inquiry.RazorpayPaymentID)
}

func TestInquiryServiceDeleteNotFound(t *testing.T) {
	svc := newInquiryService(&mockInquiryRepo{}, &mockCourseReader{})

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestInquiryServicePurge(t *testing.T) {
	repo := &mockInquiryRepo{purged: 12}
	svc := newInquiryService(repo, &mockCourseReader{})

	result, err := svc.Purge(context.Background(), dto.PurgeInquiriesRequest{Before: "2026-01-01"})
	require.NoError(t, err)

	assert.Equal(t, int64(12), result.Deleted)
	require.NotNil(t, repo.purgedAt)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *repo.purgedAt)

	_, err = svc.Purge(context.Background(), dto.PurgeInquiriesRequest{Before: "yesterday"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
