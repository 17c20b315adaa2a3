package models

import "time"

// InquiryStatus represents the lifecycle state of a course inquiry.
type InquiryStatus string

const (
	InquiryStatusPending   InquiryStatus = "pending"
	InquiryStatusContacted InquiryStatus = "contacted"
	InquiryStatusEnrolled  InquiryStatus = "enrolled"
	InquiryStatusCanceled  InquiryStatus = "canceled"
)

// Valid reports whether the status is a known lifecycle value.
func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryStatusPending, InquiryStatusContacted, InquiryStatusEnrolled, InquiryStatusCanceled:
		return true
	}
	return false
}

// PaymentStatus represents the payment state of an inquiry.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Valid reports whether the payment status is a known value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// Inquiry is one prospective student's course-interest record. The course
// name is a snapshot taken at creation time and is never re-synced.
type Inquiry struct {
	ID            string        `db:"id" json:"id"`
	Name          string        `db:"name" json:"name"`
	Email         string        `db:"email" json:"email"`
	Phone         string        `db:"phone" json:"phone"`
	Organization  string        `db:"organization" json:"organization"`
	Degree        string        `db:"degree" json:"degree"`
	Department    string        `db:"department" json:"department"`
	Year          string        `db:"year" json:"year"`
	CourseID      string        `db:"course_id" json:"course_id"`
	CourseName    string        `db:"course_name" json:"course_name"`
	Status        InquiryStatus `db:"status" json:"status"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"payment_status"`

	RazorpayOrderID   *string `db:"razorpay_order_id" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID *string `db:"razorpay_payment_id" json:"razorpay_payment_id,omitempty"`
	RazorpaySignature *string `db:"razorpay_signature" json:"-"`

	EnrollmentEmailSent   bool       `db:"enrollment_email_sent" json:"enrollment_email_sent"`
	EnrollmentEmailSentAt *time.Time `db:"enrollment_email_sent_at" json:"enrollment_email_sent_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InquiryFilter captures filtering criteria for listing inquiries.
type InquiryFilter struct {
	Status        InquiryStatus
	PaymentStatus PaymentStatus
	CourseName    string
	Search        string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
