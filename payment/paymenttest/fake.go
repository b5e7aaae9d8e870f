// Package paymenttest provides an in-memory payment.Provider for tests.
package paymenttest

import (
	"context"
	"coursemaster/payment"
	"encoding/json"
	"sync"
)

// Fake records sessions and answers webhooks from a JSON body of the form
// {"transaction_id": "...", "status": "completed", "signature": "ok"}.
type Fake struct {
	mu sync.Mutex

	SessionErr  error
	ValidateErr error
	// ValidateStatus is returned by Validate; defaults to completed.
	ValidateStatus payment.Status
	Sessions       []payment.SessionRequest
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) CreateSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SessionErr != nil {
		return nil, f.SessionErr
	}
	f.Sessions = append(f.Sessions, req)
	return &payment.Session{GatewayURL: "https://gateway.test/pay/" + req.TransactionID, Reference: "ref-" + req.TransactionID}, nil
}

func (f *Fake) Validate(ctx context.Context, transactionID string, params map[string]string) (*payment.Result, error) {
	if f.ValidateErr != nil {
		return nil, f.ValidateErr
	}
	status := f.ValidateStatus
	if status == "" {
		status = payment.StatusCompleted
	}
	return &payment.Result{TransactionID: transactionID, Status: status}, nil
}

type fakeHook struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Signature     string `json:"signature"`
}

func (f *Fake) ParseWebhook(ctx context.Context, hook payment.Webhook) (*payment.Result, error) {
	var h fakeHook
	if err := json.Unmarshal(hook.Body, &h); err != nil {
		return nil, payment.ErrMalformedWebhook
	}
	if h.Signature != "ok" {
		return nil, payment.ErrInvalidSignature
	}
	return &payment.Result{TransactionID: h.TransactionID, Status: payment.Status(h.Status)}, nil
}

// Hook builds a signed webhook body
func Hook(transactionID string, status payment.Status) payment.Webhook {
	body, _ := json.Marshal(fakeHook{TransactionID: transactionID, Status: string(status), Signature: "ok"})
	return payment.Webhook{ContentType: "application/json", Body: body}
}
