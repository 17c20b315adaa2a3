package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/icl-edu/course-inquiry-api/internal/dto"
	"github.com/icl-edu/course-inquiry-api/internal/models"
)

const inquiryColumns = `id, name, email, phone, organization, degree, department, year,
        course_id, course_name, status, payment_status,
        razorpay_order_id, razorpay_payment_id, razorpay_signature,
        enrollment_email_sent, enrollment_email_sent_at, created_at, updated_at`

// InquiryRepository handles persistence of course inquiries.
type InquiryRepository struct {
	db *sqlx.DB
}

// NewInquiryRepository constructs the repository.
func NewInquiryRepository(db *sqlx.DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// Create persists a new inquiry record.
func (r *InquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	if inquiry.ID == "" {
		inquiry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if inquiry.CreatedAt.IsZero() {
		inquiry.CreatedAt = now
	}
	inquiry.UpdatedAt = now
	if inquiry.Status == "" {
		inquiry.Status = models.InquiryStatusPending
	}
	if inquiry.PaymentStatus == "" {
		inquiry.PaymentStatus = models.PaymentStatusPending
	}
	const query = `INSERT INTO inquiries (id, name, email, phone, organization, degree, department, year,
        course_id, course_name, status, payment_status, enrollment_email_sent, created_at, updated_at)
        VALUES (:id, :name, :email, :phone, :organization, :degree, :department, :year,
        :course_id, :course_name, :status, :payment_status, :enrollment_email_sent, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, inquiry); err != nil {
		return fmt.Errorf("create inquiry: %w", err)
	}
	return nil
}

// FindByID returns an inquiry by its ID.
func (r *InquiryRepository) FindByID(ctx context.Context, id string) (*models.Inquiry, error) {
	query := fmt.Sprintf(`SELECT %s FROM inquiries WHERE id = $1`, inquiryColumns)
	var inquiry models.Inquiry
	if err := r.db.GetContext(ctx, &inquiry, query, id); err != nil {
		return nil, err
	}
	return &inquiry, nil
}

// List returns inquiries filtered by the provided criteria.
func (r *InquiryRepository) List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.PaymentStatus != "" {
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", len(args)+1))
		args = append(args, filter.PaymentStatus)
	}
	if filter.CourseName != "" {
		conditions = append(conditions, fmt.Sprintf("course_name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.CourseName+"%")
	}
	if filter.Search != "" {
		idx := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d OR organization ILIKE $%d)", idx, idx, idx, idx))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"created_at":  "created_at",
		"name":        "name",
		"course_name": "course_name",
		"status":      "status",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 10
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM inquiries%s ORDER BY %s %s LIMIT %d OFFSET %d`,
		inquiryColumns, clause, orderBy, order, size, offset)

	var inquiries []models.Inquiry
	if err := r.db.SelectContext(ctx, &inquiries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list inquiries: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM inquiries" + clause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count inquiries: %w", err)
	}
	return inquiries, total, nil
}

// UpdateStatus changes the lifecycle status of an inquiry.
func (r *InquiryRepository) UpdateStatus(ctx context.Context, id string, status models.InquiryStatus) error {
	const query = `UPDATE inquiries SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update inquiry status: %w", err)
	}
	return requireRow(result)
}

// UpdatePaymentStatus changes the payment status, optionally recording a
// gateway payment id.
func (r *InquiryRepository) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus, paymentID string) error {
	query := `UPDATE inquiries SET payment_status = $2, updated_at = $3 WHERE id = $1`
	args := []interface{}{id, status, time.Now().UTC()}
	if paymentID != "" {
		query = `UPDATE inquiries SET payment_status = $2, updated_at = $3, razorpay_payment_id = $4 WHERE id = $1`
		args = append(args, paymentID)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return requireRow(result)
}

// SetOrderID overwrites the gateway order id for an inquiry. Repeated order
// creation replaces the link to any prior uncompleted order.
func (r *InquiryRepository) SetOrderID(ctx context.Context, id, orderID string) error {
	const query = `UPDATE inquiries SET razorpay_order_id = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, orderID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set order id: %w", err)
	}
	return requireRow(result)
}

// MarkEnrolled applies the successful-verification transition as a single
// conditional update: payment correlation fields, payment_status=completed
// and status=enrolled are written together, and only while the inquiry has
// not already enrolled. It returns false when the guard matched no row,
// which callers treat as an idempotent replay.
func (r *InquiryRepository) MarkEnrolled(ctx context.Context, id, orderID, paymentID, signature, organization string) (bool, error) {
	query := `UPDATE inquiries SET
        status = $2, payment_status = $3,
        razorpay_payment_id = $4, updated_at = $5`
	args := []interface{}{id, models.InquiryStatusEnrolled, models.PaymentStatusCompleted, paymentID, time.Now().UTC()}
	if orderID != "" {
		query += fmt.Sprintf(", razorpay_order_id = $%d", len(args)+1)
		args = append(args, orderID)
	}
	if signature != "" {
		query += fmt.Sprintf(", razorpay_signature = $%d", len(args)+1)
		args = append(args, signature)
	}
	if organization != "" {
		query += fmt.Sprintf(", organization = $%d", len(args)+1)
		args = append(args, organization)
	}
	query += " WHERE id = $1 AND status <> 'enrolled'"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark enrolled: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark enrolled rows: %w", err)
	}
	return affected > 0, nil
}

// MarkPaymentFailed records a failed verification without touching the
// lifecycle status. Enrolled inquiries are never demoted: a late or forged
// inauthentic call after a successful verification matches no row.
func (r *InquiryRepository) MarkPaymentFailed(ctx context.Context, id string) error {
	const query = `UPDATE inquiries SET payment_status = $2, updated_at = $3 WHERE id = $1 AND status <> 'enrolled'`
	if _, err := r.db.ExecContext(ctx, query, id, models.PaymentStatusFailed, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	return nil
}

// MarkEmailSent flips the enrollment-email flag. The flag only moves from
// false to true; a concurrent duplicate send finds no row and reports false.
func (r *InquiryRepository) MarkEmailSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	const query = `UPDATE inquiries SET enrollment_email_sent = TRUE, enrollment_email_sent_at = $2, updated_at = $2
        WHERE id = $1 AND enrollment_email_sent = FALSE`
	result, err := r.db.ExecContext(ctx, query, id, sentAt)
	if err != nil {
		return false, fmt.Errorf("mark email sent: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark email sent rows: %w", err)
	}
	return affected > 0, nil
}

// Delete removes a single inquiry.
func (r *InquiryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM inquiries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inquiry: %w", err)
	}
	return requireRow(result)
}

// DeleteCreatedBefore purges inquiries older than the cutoff and returns
// how many were removed.
func (r *InquiryRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM inquiries WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge inquiries: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge inquiries rows: %w", err)
	}
	return deleted, nil
}

// CountAll returns the total number of inquiries.
func (r *InquiryRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM inquiries`); err != nil {
		return 0, fmt.Errorf("count inquiries: %w", err)
	}
	return total, nil
}

// CountCreatedSince counts inquiries created at or after the given instant.
func (r *InquiryRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM inquiries WHERE created_at >= $1`, since); err != nil {
		return 0, fmt.Errorf("count inquiries since: %w", err)
	}
	return total, nil
}

// CountByStatus returns the lifecycle status histogram.
func (r *InquiryRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	return r.groupedCount(ctx, `SELECT status AS label, COUNT(*) AS count FROM inquiries GROUP BY status`)
}

// CountByPaymentStatus returns the payment status histogram.
func (r *InquiryRepository) CountByPaymentStatus(ctx context.Context) (map[string]int, error) {
	return r.groupedCount(ctx, `SELECT payment_status AS label, COUNT(*) AS count FROM inquiries GROUP BY payment_status`)
}

func (r *InquiryRepository) groupedCount(ctx context.Context, query string) (map[string]int, error) {
	var rows []dto.GroupCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("grouped count: %w", err)
	}
	histogram := make(map[string]int, len(rows))
	for _, row := range rows {
		histogram[row.Label] = row.Count
	}
	return histogram, nil
}

// TotalRevenue sums the current course price over completed payments. The
// join uses the live catalog price, not a payment-time snapshot.
func (r *InquiryRepository) TotalRevenue(ctx context.Context) (int64, error) {
	const query = `SELECT COALESCE(SUM(c.price), 0) FROM inquiries i
        JOIN courses c ON c.id = i.course_id
        WHERE i.payment_status = 'completed'`
	var revenue int64
	if err := r.db.GetContext(ctx, &revenue, query); err != nil {
		return 0, fmt.Errorf("total revenue: %w", err)
	}
	return revenue, nil
}

// TopCourses returns the courses with the most inquiries, including how
// many of those converted to enrollments.
func (r *InquiryRepository) TopCourses(ctx context.Context, limit int) ([]dto.CourseBreakdown, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT course_name, COUNT(*) AS count,
        SUM(CASE WHEN status = 'enrolled' THEN 1 ELSE 0 END) AS enrolled
        FROM inquiries GROUP BY course_name ORDER BY count DESC LIMIT %d`, limit)
	var rows []dto.CourseBreakdown
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("top courses: %w", err)
	}
	return rows, nil
}

// TopOrganizations returns the organizations submitting the most inquiries.
func (r *InquiryRepository) TopOrganizations(ctx context.Context, limit int) ([]dto.GroupCount, error) {
	return r.topGroup(ctx, "organization", limit)
}

// TopDepartments returns the departments submitting the most inquiries.
func (r *InquiryRepository) TopDepartments(ctx context.Context, limit int) ([]dto.GroupCount, error) {
	return r.topGroup(ctx, "department", limit)
}

func (r *InquiryRepository) topGroup(ctx context.Context, column string, limit int) ([]dto.GroupCount, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT %s AS label, COUNT(*) AS count FROM inquiries
        GROUP BY %s ORDER BY count DESC LIMIT %d`, column, column, limit)
	var rows []dto.GroupCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("top %s: %w", column, err)
	}
	return rows, nil
}

// DailyCounts buckets inquiries per day between from (inclusive) and to
// (exclusive). Missing days are absent from the result; callers zero-fill.
func (r *InquiryRepository) DailyCounts(ctx context.Context, from, to time.Time) (map[string]int, error) {
	const query = `SELECT TO_CHAR(DATE_TRUNC('day', created_at), 'YYYY-MM-DD') AS label, COUNT(*) AS count
        FROM inquiries WHERE created_at >= $1 AND created_at < $2
        GROUP BY 1`
	var rows []dto.GroupCount
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}
	buckets := make(map[string]int, len(rows))
	for _, row := range rows {
		buckets[row.Label] = row.Count
	}
	return buckets, nil
}

// ListPendingEmails returns eligible inquiries that have not yet received
// their enrollment confirmation.
func (r *InquiryRepository) ListPendingEmails(ctx context.Context, limit, offset int) ([]dto.PendingRecipient, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const where = ` FROM inquiries WHERE status = 'enrolled' AND payment_status = 'completed' AND enrollment_email_sent = FALSE`
	query := fmt.Sprintf(`SELECT id, name, email, course_name, created_at%s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		where, limit, offset)
	var recipients []dto.PendingRecipient
	if err := r.db.SelectContext(ctx, &recipients, query); err != nil {
		return nil, 0, fmt.Errorf("list pending emails: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*)"+where); err != nil {
		return nil, 0, fmt.Errorf("count pending emails: %w", err)
	}
	return recipients, total, nil
}

// PendingEmailIDs returns every eligible inquiry id, oldest first.
func (r *InquiryRepository) PendingEmailIDs(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM inquiries
        WHERE status = 'enrolled' AND payment_status = 'completed' AND enrollment_email_sent = FALSE
        ORDER BY created_at ASC`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("pending email ids: %w", err)
	}
	return ids, nil
}

// CountEnrolledCompleted counts inquiries that finished the payment flow.
func (r *InquiryRepository) CountEnrolledCompleted(ctx context.Context) (int, error) {
	var total int
	const query = `SELECT COUNT(*) FROM inquiries WHERE status = 'enrolled' AND payment_status = 'completed'`
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count enrolled: %w", err)
	}
	return total, nil
}

// CountEmailsSent counts inquiries whose confirmation was delivered.
func (r *InquiryRepository) CountEmailsSent(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM inquiries WHERE enrollment_email_sent = TRUE`); err != nil {
		return 0, fmt.Errorf("count emails sent: %w", err)
	}
	return total, nil
}

// CountEmailsSentSince counts confirmations delivered after the instant.
func (r *InquiryRepository) CountEmailsSentSince(ctx context.Context, since time.Time) (int, error) {
	var total int
	const query = `SELECT COUNT(*) FROM inquiries WHERE enrollment_email_sent = TRUE AND enrollment_email_sent_at >= $1`
	if err := r.db.GetContext(ctx, &total, query, since); err != nil {
		return 0, fmt.Errorf("count recent emails: %w", err)
	}
	return total, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
