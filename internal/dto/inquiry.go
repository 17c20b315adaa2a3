package dto

// CreateInquiryRequest is the public submission payload.
type CreateInquiryRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=120"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,min=7,max=20"`
	Organization string `json:"organization" validate:"required,max=200"`
	Degree       string `json:"degree" validate:"required,max=100"`
	Department   string `json:"department" validate:"required,max=100"`
	Year         string `json:"year" validate:"required,max=20"`
	CourseID     string `json:"course_id" validate:"required"`
}

// UpdateInquiryStatusRequest changes an inquiry's lifecycle status.
type UpdateInquiryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdatePaymentStatusRequest changes an inquiry's payment status, optionally
// attaching a gateway payment id.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
	PaymentID     string `json:"payment_id"`
}

// PurgeInquiriesRequest deletes inquiries created before the given date.
type PurgeInquiriesRequest struct {
	Before string `json:"before" validate:"required"`
}

// PurgeResult reports how many rows a purge removed.
type PurgeResult struct {
	Deleted int64 `json:"deleted"`
}
