package dto

import "github.com/icl-edu/course-inquiry-api/internal/models"

// OrderResponse is returned to the checkout frontend after order creation.
type OrderResponse struct {
	OrderID   string       `json:"id"`
	Amount    int64        `json:"amount"`
	Currency  string       `json:"currency"`
	Receipt   string       `json:"receipt"`
	InquiryID string       `json:"inquiry_id"`
	KeyID     string       `json:"key_id"`
	Prefill   OrderPrefill `json:"prefill"`
	TestMode  bool         `json:"is_test_mode"`
}

// OrderPrefill carries contact fields for the hosted checkout form.
type OrderPrefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// VerifySignatureRequest is the signature verification payload. Razorpay
// posts snake_case fields on redirects and camelCase from the JS SDK; both
// are accepted.
type VerifySignatureRequest struct {
	OrderID      string `json:"razorpayOrderId"`
	OrderIDAlt   string `json:"razorpay_order_id"`
	PaymentID    string `json:"razorpayPaymentId"`
	PaymentIDAlt string `json:"razorpay_payment_id"`
	Signature    string `json:"razorpaySignature"`
	SignatureAlt string `json:"razorpay_signature"`
	InquiryID    string `json:"inquiryId" validate:"required"`
	Organization string `json:"organization"`
}

// Normalize resolves the alternate field spellings in place.
func (r *VerifySignatureRequest) Normalize() {
	if r.OrderID == "" {
		r.OrderID = r.OrderIDAlt
	}
	if r.PaymentID == "" {
		r.PaymentID = r.PaymentIDAlt
	}
	if r.Signature == "" {
		r.Signature = r.SignatureAlt
	}
}

// VerifyLookupRequest is the simplified verification payload used by
// redirect flows that only carry a payment id.
type VerifyLookupRequest struct {
	PaymentID    string `json:"paymentId" validate:"required"`
	InquiryID    string `json:"inquiryId" validate:"required"`
	Organization string `json:"organization"`
}

// ManualVerifyRequest is the administrative override payload.
type ManualVerifyRequest struct {
	PaymentID string `json:"payment_id"`
	Notes     string `json:"notes"`
}

// VerificationResult reports the outcome of a verification attempt.
type VerificationResult struct {
	Authentic bool            `json:"authentic"`
	TestMode  bool            `json:"test_mode"`
	Inquiry   *models.Inquiry `json:"inquiry,omitempty"`
}
