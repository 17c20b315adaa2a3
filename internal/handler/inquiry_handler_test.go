package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/icl-edu/course-inquiry-api/internal/models"
	"github.com/icl-edu/course-inquiry-api/internal/service"
)

type fakeInquiryStore struct {
	inquiries map[string]models.Inquiry
	purged    int64
}

func (f *fakeInquiryStore) Create(ctx context.Context, inquiry *models.Inquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = "generated-id"
	}
	inquiry.Status = models.InquiryStatusPending
	inquiry.PaymentStatus = models.PaymentStatusPending
	if f.inquiries == nil {
		f.inquiries = make(map[string]models.Inquiry)
	}
	f.inquiries[inquiry.ID] = *inquiry
	return nil
}

func (f *fakeInquiryStore) FindByID(ctx context.Context, id string) (*models.Inquiry, error) {
	if q, ok := f.inquiries[id]; ok {
		return &q, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeInquiryStore) List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error) {
	var out []models.Inquiry
	for _, q := range f.inquiries {
		out = append(out, q)
	}
	return out, len(out), nil
}

func (f *fakeInquiryStore) UpdateStatus(ctx context.Context, id string, status models.InquiryStatus) error {
	q, ok := f.inquiries[id]
	if !ok {
		return sql.ErrNoRows
	}
	q.Status = status
	f.inquiries[id] = q
	return nil
}

func (f *fakeInquiryStore) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus, paymentID string) error {
	q, ok := f.inquiries[id]
	if !ok {
		return sql.ErrNoRows
	}
	q.PaymentStatus = status
	f.inquiries[id] = q
	return nil
}

func (f *fakeInquiryStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.inquiries[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.inquiries, id)
	return nil
}

func (f *fakeInquiryStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.purged, nil
}

type fakeCourseStore struct {
	courses map[string]models.Course
}

func (f *fakeCourseStore) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := f.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

type envelope struct {
	Data  map[string]interface{} `json:"data"`
	Error map[string]interface{} `json:"error"`
}

func newInquiryHandler(store *fakeInquiryStore, courses *fakeCourseStore) *InquiryHandler {
	svc := service.NewInquiryService(store, courses, validator.New(), zap.NewNop())
	return NewInquiryHandler(svc, nil, nil)
}

func TestInquiryHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeInquiryStore{}
	courses := &fakeCourseStore{courses: map[string]models.Course{"c1": {ID: "c1", Title: "Go Bootcamp", Active: true}}}
	handler := newInquiryHandler(store, courses)

	body := `{"name":"Asha Rao","email":"asha@example.com","phone":"9876543210","organization":"ICL","degree":"BTech","department":"CSE","year":"2026","course_id":"c1"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/inquiries", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "Go Bootcamp", env.Data["course_name"])
	assert.Equal(t, "pending", env.Data["status"])
}

func TestInquiryHandlerCreateInvalidJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newInquiryHandler(&fakeInquiryStore{}, &fakeCourseStore{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/inquiries", strings.NewReader("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInquiryHandlerCreateUnknownCourse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newInquiryHandler(&fakeInquiryStore{}, &fakeCourseStore{})

	body := `{"name":"Asha Rao","email":"asha@example.com","phone":"9876543210","organization":"ICL","degree":"BTech","department":"CSE","year":"2026","course_id":"missing"}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/inquiries", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Create(c)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "NOT_FOUND", env.Error["code"])
}

func TestInquiryHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newInquiryHandler(&fakeInquiryStore{}, &fakeCourseStore{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/inquiries/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInquiryHandlerUpdateStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeInquiryStore{inquiries: map[string]models.Inquiry{"q1": {ID: "q1", Status: models.InquiryStatusPending}}}
	handler := newInquiryHandler(store, &fakeCourseStore{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPatch, "/inquiries/q1/status", strings.NewReader(`{"status":"contacted"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "q1"}}

	handler.UpdateStatus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "contacted", env.Data["status"])
}

func TestInquiryHandlerPurge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &fakeInquiryStore{purged: 9}
	handler := newInquiryHandler(store, &fakeCourseStore{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/inquiries/purge", strings.NewReader(`{"before":"2026-01-01"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Purge(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, float64(9), env.Data["deleted"])
}
