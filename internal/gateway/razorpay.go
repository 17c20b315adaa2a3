package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/icl-edu/course-inquiry-api/pkg/config"
)

// Order is the gateway-side reservation of an amount to be paid.
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
}

// Payment is the gateway's view of a payment resource.
type Payment struct {
	ID     string
	Status string
	Amount int64
}

// Client abstracts the payment gateway so services stay testable.
type Client interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
	KeyID() string
}

// RazorpayClient wraps the official SDK. It is constructed once at process
// start and injected; handlers never reach for a package-level instance.
type RazorpayClient struct {
	client *razorpay.Client
	keyID  string
}

// NewRazorpayClient builds a gateway client, or nil when credentials are
// absent. Callers must treat a nil client as ServiceUnavailable.
func NewRazorpayClient(cfg config.RazorpayConfig) *RazorpayClient {
	if !cfg.Configured() {
		return nil
	}
	return &RazorpayClient{
		client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		keyID:  cfg.KeyID,
	}
}

// KeyID returns the public key the checkout frontend needs.
func (c *RazorpayClient) KeyID() string {
	return c.keyID
}

// CreateOrder opens an order for the given minor-unit amount. The SDK does
// not accept a context; the parameter keeps the interface uniform.
func (c *RazorpayClient) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := c.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create: %w", err)
	}
	order := &Order{
		ID:       stringField(body, "id"),
		Amount:   intField(body, "amount"),
		Currency: stringField(body, "currency"),
		Receipt:  stringField(body, "receipt"),
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay order create: missing order id in response")
	}
	return order, nil
}

// FetchPayment loads a payment resource by id.
func (c *RazorpayClient) FetchPayment(_ context.Context, paymentID string) (*Payment, error) {
	body, err := c.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay payment fetch: %w", err)
	}
	return &Payment{
		ID:     stringField(body, "id"),
		Status: stringField(body, "status"),
		Amount: intField(body, "amount"),
	}, nil
}

func stringField(body map[string]interface{}, key string) string {
	if v, ok := body[key].(string); ok {
		return v
	}
	return ""
}

func intField(body map[string]interface{}, key string) int64 {
	switch v := body[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
