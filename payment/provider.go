// Package payment puts external checkout gateways behind one Provider interface.
package payment

import (
	"context"
	"coursemaster/config"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

var (
	// ErrInvalidSignature is returned when a callback cannot be authenticated
	ErrInvalidSignature = errors.New("invalid payment callback signature")
	// ErrMalformedWebhook is returned when a callback body cannot be decoded
	ErrMalformedWebhook = errors.New("malformed payment callback")
)

// SessionRequest describes the checkout to open at the gateway
type SessionRequest struct {
	TransactionID string
	OrderID       uint
	Amount        float64
	Currency      string
	CourseID      uint
	CourseTitle   string
	Category      string
	CustomerID    uint
	CustomerName  string
	CustomerEmail string
}

// Session is where the customer should be redirected to pay
type Session struct {
	GatewayURL string
	Reference  string
}

// Result is the gateway's verdict on a transaction
type Result struct {
	TransactionID string
	Status        Status
	Reference     string
	Amount        float64
}

// Webhook is a raw gateway push as received over HTTP
type Webhook struct {
	ContentType string
	Body        []byte
}

// Provider is one external payment gateway
type Provider interface {
	Name() string
	// CreateSession opens a checkout and returns the redirect target.
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	// Validate confirms a transaction after the customer is redirected back.
	// params carries the redirect query string.
	Validate(ctx context.Context, transactionID string, params map[string]string) (*Result, error)
	// ParseWebhook authenticates and decodes a gateway push.
	ParseWebhook(ctx context.Context, hook Webhook) (*Result, error)
}

// New builds the provider selected by PAYMENT_PROVIDER
func New(cfg *config.Config) (Provider, error) {
	switch cfg.PaymentProvider {
	case "sslcommerz", "":
		baseURL := SSLCommerzLiveURL
		if cfg.SSLCommerzSandbox {
			baseURL = SSLCommerzSandboxURL
		}
		return NewSSLCommerz(SSLCommerzConfig{
			StoreID:       cfg.SSLCommerzStoreID,
			StorePassword: cfg.SSLCommerzPass,
			BaseURL:       baseURL,
			BackendURL:    cfg.BackendURL,
			FrontendURL:   cfg.FrontendURL,
			Timeout:       30 * time.Second,
		}), nil
	case "midtrans":
		return NewMidtrans(MidtransConfig{
			ServerKey:  cfg.MidtransServerKey,
			Production: cfg.MidtransProd,
		}), nil
	default:
		return nil, fmt.Errorf("unknown PAYMENT_PROVIDER %q", cfg.PaymentProvider)
	}
}

// PayloadJSON renders a webhook body as JSON for storage.
// Form-encoded bodies become a flat object.
func PayloadJSON(hook Webhook) []byte {
	if json.Valid(hook.Body) {
		return hook.Body
	}
	values, err := url.ParseQuery(string(hook.Body))
	if err != nil {
		raw, _ := json.Marshal(map[string]string{"raw": string(hook.Body)})
		return raw
	}
	flat := make(map[string]string, len(values))
	for k := range values {
		flat[k] = values.Get(k)
	}
	raw, _ := json.Marshal(flat)
	return raw
}
