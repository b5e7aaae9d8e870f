package payment

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type MidtransConfig struct {
	ServerKey  string
	Production bool
}

// Midtrans opens Snap checkouts and reads transaction status from the Core API
type Midtrans struct {
	serverKey string
	snap      snap.Client
	core      coreapi.Client
}

func NewMidtrans(cfg MidtransConfig) *Midtrans {
	env := midtrans.Sandbox
	if cfg.Production {
		env = midtrans.Production
	}
	m := &Midtrans{serverKey: cfg.ServerKey}
	m.snap.New(cfg.ServerKey, env)
	m.core.New(cfg.ServerKey, env)
	return m
}

func (m *Midtrans) Name() string { return "midtrans" }

func (m *Midtrans) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	amount := int64(math.Round(req.Amount))
	if amount <= 0 {
		return nil, fmt.Errorf("midtrans: invalid amount %.2f", req.Amount)
	}
	category := req.Category
	if category == "" {
		category = "Education"
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.TransactionID,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       strconv.FormatUint(uint64(req.CourseID), 10),
				Name:     truncate(req.CourseTitle, 50),
				Price:    amount,
				Qty:      1,
				Category: category,
			},
		},
	}

	resp, err := m.snap.CreateTransaction(snapReq)
	if err != nil {
		return nil, fmt.Errorf("midtrans snap: %s", err.Message)
	}
	return &Session{GatewayURL: resp.RedirectURL, Reference: resp.Token}, nil
}

// Validate reads the transaction status by order id (our transaction id)
func (m *Midtrans) Validate(ctx context.Context, transactionID string, params map[string]string) (*Result, error) {
	status, err := m.core.CheckTransaction(transactionID)
	if err != nil {
		return nil, fmt.Errorf("midtrans status: %s", err.Message)
	}
	res := &Result{
		TransactionID: transactionID,
		Status:        mapMidtransStatus(status.TransactionStatus, status.FraudStatus),
		Reference:     status.TransactionID,
	}
	if amount, perr := strconv.ParseFloat(status.GrossAmount, 64); perr == nil {
		res.Amount = amount
	}
	return res, nil
}

type midtransNotification struct {
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

// ParseWebhook verifies SHA512(order_id + status_code + gross_amount + server key)
func (m *Midtrans) ParseWebhook(ctx context.Context, hook Webhook) (*Result, error) {
	var n midtransNotification
	if err := json.Unmarshal(hook.Body, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}
	want := strings.ToLower(n.SignatureKey)
	if want == "" || want != m.signature(n.OrderID, n.StatusCode, n.GrossAmount) {
		return nil, ErrInvalidSignature
	}

	res := &Result{
		TransactionID: n.OrderID,
		Status:        mapMidtransStatus(n.TransactionStatus, n.FraudStatus),
		Reference:     n.TransactionID,
	}
	if amount, err := strconv.ParseFloat(n.GrossAmount, 64); err == nil {
		res.Amount = amount
	}
	return res, nil
}

func (m *Midtrans) signature(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + m.serverKey))
	return hex.EncodeToString(sum[:])
}

func mapMidtransStatus(transactionStatus, fraudStatus string) Status {
	switch strings.ToLower(transactionStatus) {
	case "capture":
		switch strings.ToLower(fraudStatus) {
		case "accept", "":
			return StatusCompleted
		case "challenge":
			return StatusPending
		default:
			return StatusFailed
		}
	case "settlement":
		return StatusCompleted
	case "deny", "cancel", "expire", "failure":
		return StatusFailed
	case "refund", "partial_refund":
		return StatusRefunded
	default:
		return StatusPending
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
