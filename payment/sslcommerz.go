package payment

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	SSLCommerzSandboxURL = "https://sandbox.sslcommerz.com"
	SSLCommerzLiveURL    = "https://securepay.sslcommerz.com"

	sslSessionPath    = "/gwprocess/v3/api.php"
	sslValidationPath = "/validator/api/validationserverAPI.php"
)

type SSLCommerzConfig struct {
	StoreID       string
	StorePassword string
	BaseURL       string
	BackendURL    string
	FrontendURL   string
	Timeout       time.Duration
}

// SSLCommerz talks to the SSLCommerz hosted checkout over form-encoded HTTP
type SSLCommerz struct {
	cfg    SSLCommerzConfig
	client *resty.Client
}

func NewSSLCommerz(cfg SSLCommerzConfig) *SSLCommerz {
	client := resty.New().SetBaseURL(cfg.BaseURL)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &SSLCommerz{cfg: cfg, client: client}
}

func (s *SSLCommerz) Name() string { return "sslcommerz" }

type sslSessionResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

func (s *SSLCommerz) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	category := req.Category
	if category == "" {
		category = "Education"
	}
	name := req.CustomerName
	if name == "" {
		name = "Student"
	}

	form := map[string]string{
		"store_id":         s.cfg.StoreID,
		"store_passwd":     s.cfg.StorePassword,
		"total_amount":     strconv.FormatFloat(req.Amount, 'f', 2, 64),
		"currency":         req.Currency,
		"tran_id":          req.TransactionID,
		"success_url":      s.cfg.FrontendURL + "/payment/success",
		"fail_url":         s.cfg.FrontendURL + "/payment/fail",
		"cancel_url":       s.cfg.FrontendURL + "/payment/cancel",
		"ipn_url":          s.cfg.BackendURL + "/api/payments/webhook",
		"product_name":     req.CourseTitle,
		"product_category": category,
		"product_profile":  "non-physical-goods",
		"cus_name":         name,
		"cus_email":        req.CustomerEmail,
		"cus_add1":         "Dhaka",
		"cus_city":         "Dhaka",
		"cus_postcode":     "1000",
		"cus_country":      "Bangladesh",
		"cus_phone":        "01800000000",
		"shipping_method":  "NO",
		"num_of_item":      "1",
		"value_a":          strconv.FormatUint(uint64(req.CustomerID), 10),
		"value_b":          strconv.FormatUint(uint64(req.CourseID), 10),
		"value_c":          strconv.FormatUint(uint64(req.OrderID), 10),
	}

	var out sslSessionResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		ForceContentType("application/json").
		Post(sslSessionPath)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz session request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("sslcommerz session request: http %d", resp.StatusCode())
	}
	if out.Status != "SUCCESS" || out.GatewayPageURL == "" {
		return nil, fmt.Errorf("sslcommerz session rejected: %s", out.FailedReason)
	}
	return &Session{GatewayURL: out.GatewayPageURL, Reference: out.SessionKey}, nil
}

type sslValidationResponse struct {
	Status   string `json:"status"`
	TranID   string `json:"tran_id"`
	ValID    string `json:"val_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// Validate asks the validation API about val_id, which the gateway appends to the redirect
func (s *SSLCommerz) Validate(ctx context.Context, transactionID string, params map[string]string) (*Result, error) {
	valID := params["val_id"]
	if valID == "" {
		// no val_id means the customer came back through the fail or cancel url
		return &Result{TransactionID: transactionID, Status: StatusFailed}, nil
	}
	return s.validate(ctx, transactionID, valID)
}

func (s *SSLCommerz) validate(ctx context.Context, transactionID, valID string) (*Result, error) {
	var out sslValidationResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"val_id":       valID,
			"store_id":     s.cfg.StoreID,
			"store_passwd": s.cfg.StorePassword,
			"format":       "json",
		}).
		SetResult(&out).
		ForceContentType("application/json").
		Get(sslValidationPath)
	if err != nil {
		return nil, fmt.Errorf("sslcommerz validation request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("sslcommerz validation request: http %d", resp.StatusCode())
	}

	res := &Result{TransactionID: transactionID, Reference: valID, Status: StatusFailed}
	if out.TranID != "" && out.TranID != transactionID {
		return res, nil
	}
	if amount, err := strconv.ParseFloat(out.Amount, 64); err == nil {
		res.Amount = amount
	}
	if out.Status == "VALID" || out.Status == "VALIDATED" {
		res.Status = StatusCompleted
	}
	return res, nil
}

// ParseWebhook handles the IPN post. The verify_sign field is checked first;
// successful payments are then confirmed against the validation API.
func (s *SSLCommerz) ParseWebhook(ctx context.Context, hook Webhook) (*Result, error) {
	form, err := url.ParseQuery(string(hook.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}
	if !s.verifySign(form) {
		return nil, ErrInvalidSignature
	}

	tranID := form.Get("tran_id")
	switch form.Get("status") {
	case "VALID", "VALIDATED":
		return s.validate(ctx, tranID, form.Get("val_id"))
	case "FAILED", "CANCELLED", "UNATTEMPTED", "EXPIRED":
		return &Result{TransactionID: tranID, Status: StatusFailed, Reference: form.Get("val_id")}, nil
	default:
		return &Result{TransactionID: tranID, Status: StatusPending}, nil
	}
}

// verifySign recomputes the IPN signature: md5 over the keys listed in verify_key
// plus md5(store_passwd), sorted by key and joined as k=v&k=v.
func (s *SSLCommerz) verifySign(form url.Values) bool {
	sign := form.Get("verify_sign")
	keys := form.Get("verify_key")
	if sign == "" || keys == "" {
		return false
	}

	data := map[string]string{"store_passwd": md5Hex(s.cfg.StorePassword)}
	for _, k := range strings.Split(keys, ",") {
		data[k] = form.Get(k)
	}
	names := make([]string, 0, len(data))
	for k := range data {
		names = append(names, k)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+"="+data[k])
	}
	return md5Hex(strings.Join(parts, "&")) == strings.ToLower(sign)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
