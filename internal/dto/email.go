package dto

import "time"

// BatchEmailRequest selects inquiries for confirmation-email dispatch.
type BatchEmailRequest struct {
	InquiryIDs []string `json:"inquiry_ids" validate:"required,min=1,max=100"`
}

// SendAllRequest triggers dispatch to every eligible inquiry.
type SendAllRequest struct {
	DryRun bool `json:"dry_run"`
}

// SentEmail records a successful dispatch within a batch.
type SentEmail struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Course string `json:"course"`
}

// FailedEmail records a per-item failure with its reason.
type FailedEmail struct {
	ID     string `json:"id"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason"`
}

// AlreadySentEmail records an inquiry that was skipped because its
// confirmation was delivered earlier.
type AlreadySentEmail struct {
	ID     string     `json:"id"`
	Email  string     `json:"email"`
	SentAt *time.Time `json:"sent_at,omitempty"`
}

// BatchEmailResult summarises one batch call.
type BatchEmailResult struct {
	Total       int                `json:"total"`
	Sent        []SentEmail        `json:"sent"`
	Failed      []FailedEmail      `json:"failed"`
	AlreadySent []AlreadySentEmail `json:"already_sent"`
}

// PendingRecipient is an eligible inquiry awaiting its confirmation email.
type PendingRecipient struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	CourseName string    `db:"course_name" json:"course_name"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// EmailStats summarises confirmation-email progress.
type EmailStats struct {
	TotalEnrolled     int     `json:"total_enrolled"`
	EmailsSent        int     `json:"emails_sent"`
	EmailsPending     int     `json:"emails_pending"`
	RecentEmails7Days int     `json:"recent_emails_7_days"`
	SuccessRate       float64 `json:"success_rate"`
}
