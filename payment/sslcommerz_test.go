package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSSLCommerzStub(t *testing.T, handler http.HandlerFunc) *SSLCommerz {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSSLCommerz(SSLCommerzConfig{
		StoreID:       "store",
		StorePassword: "store-pass",
		BaseURL:       srv.URL,
		BackendURL:    "http://api.local",
		FrontendURL:   "http://web.local",
	})
}

func TestSSLCommerzCreateSession(t *testing.T) {
	var got url.Values
	p := newSSLCommerzStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, sslSessionPath, r.URL.Path)
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"SUCCESS","sessionkey":"SK1","GatewayPageURL":"https://pay.example/abc"}`))
	})

	session, err := p.CreateSession(context.Background(), SessionRequest{
		TransactionID: "COURSE_1",
		OrderID:       9,
		Amount:        1500,
		Currency:      "BDT",
		CourseID:      3,
		CourseTitle:   "Go",
		CustomerID:    4,
		CustomerEmail: "s@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/abc", session.GatewayURL)
	assert.Equal(t, "SK1", session.Reference)

	assert.Equal(t, "store", got.Get("store_id"))
	assert.Equal(t, "1500.00", got.Get("total_amount"))
	assert.Equal(t, "COURSE_1", got.Get("tran_id"))
	assert.Equal(t, "http://api.local/api/payments/webhook", got.Get("ipn_url"))
	assert.Equal(t, "4", got.Get("value_a"))
	assert.Equal(t, "3", got.Get("value_b"))
	assert.Equal(t, "9", got.Get("value_c"))
}

func TestSSLCommerzCreateSessionRejected(t *testing.T) {
	p := newSSLCommerzStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"FAILED","failedreason":"Store Credential Error"}`))
	})
	_, err := p.CreateSession(context.Background(), SessionRequest{TransactionID: "T", Amount: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Store Credential Error")
}

func TestSSLCommerzValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		params map[string]string
		want   Status
	}{
		{"valid", `{"status":"VALID","tran_id":"T1","amount":"1500.00"}`, map[string]string{"val_id": "V1"}, StatusCompleted},
		{"validated", `{"status":"VALIDATED","tran_id":"T1"}`, map[string]string{"val_id": "V1"}, StatusCompleted},
		{"invalid", `{"status":"INVALID_TRANSACTION"}`, map[string]string{"val_id": "V1"}, StatusFailed},
		{"other transaction", `{"status":"VALID","tran_id":"T2"}`, map[string]string{"val_id": "V1"}, StatusFailed},
		{"no val_id", ``, map[string]string{}, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newSSLCommerzStub(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "V1", r.URL.Query().Get("val_id"))
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})
			res, err := p.Validate(context.Background(), "T1", tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, "T1", res.TransactionID)
		})
	}
}

func TestSSLCommerzParseWebhook(t *testing.T) {
	validations := 0
	p := newSSLCommerzStub(t, func(w http.ResponseWriter, r *http.Request) {
		validations++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"VALID","tran_id":"T1","amount":"100.00"}`))
	})

	sign := func(form url.Values) string {
		form.Set("verify_key", "amount,status,tran_id,val_id")
		form.Set("verify_sign", md5Hex("amount="+form.Get("amount")+
			"&status="+form.Get("status")+
			"&store_passwd="+md5Hex("store-pass")+
			"&tran_id="+form.Get("tran_id")+
			"&val_id="+form.Get("val_id")))
		return form.Encode()
	}

	t.Run("valid payment is confirmed with the validation api", func(t *testing.T) {
		body := sign(url.Values{"tran_id": {"T1"}, "status": {"VALID"}, "val_id": {"V1"}, "amount": {"100.00"}})
		res, err := p.ParseWebhook(context.Background(), Webhook{Body: []byte(body)})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, res.Status)
		assert.Equal(t, "T1", res.TransactionID)
		assert.Equal(t, 1, validations)
	})

	t.Run("failed payment", func(t *testing.T) {
		body := sign(url.Values{"tran_id": {"T1"}, "status": {"FAILED"}, "val_id": {""}, "amount": {"100.00"}})
		res, err := p.ParseWebhook(context.Background(), Webhook{Body: []byte(body)})
		require.NoError(t, err)
		assert.Equal(t, StatusFailed, res.Status)
	})

	t.Run("tampered body", func(t *testing.T) {
		form, _ := url.ParseQuery(sign(url.Values{"tran_id": {"T1"}, "status": {"FAILED"}, "val_id": {""}, "amount": {"100.00"}}))
		form.Set("status", "VALID")
		_, err := p.ParseWebhook(context.Background(), Webhook{Body: []byte(form.Encode())})
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("unsigned body", func(t *testing.T) {
		_, err := p.ParseWebhook(context.Background(), Webhook{Body: []byte("tran_id=T1&status=VALID")})
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}
