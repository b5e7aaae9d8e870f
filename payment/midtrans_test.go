package payment

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMidtransParseWebhook(t *testing.T) {
	m := NewMidtrans(MidtransConfig{ServerKey: "server-key"})

	body := func(status, fraud, signature string) []byte {
		return []byte(fmt.Sprintf(
			`{"order_id":"COURSE_1","status_code":"200","gross_amount":"150000.00","transaction_status":%q,"fraud_status":%q,"transaction_id":"mt-1","signature_key":%q}`,
			status, fraud, signature,
		))
	}
	valid := m.signature("COURSE_1", "200", "150000.00")

	t.Run("settlement", func(t *testing.T) {
		res, err := m.ParseWebhook(context.Background(), Webhook{Body: body("settlement", "", valid)})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, res.Status)
		assert.Equal(t, "COURSE_1", res.TransactionID)
		assert.Equal(t, "mt-1", res.Reference)
		assert.Equal(t, 150000.0, res.Amount)
	})

	t.Run("bad signature", func(t *testing.T) {
		_, err := m.ParseWebhook(context.Background(), Webhook{Body: body("settlement", "", "deadbeef")})
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("missing signature", func(t *testing.T) {
		_, err := m.ParseWebhook(context.Background(), Webhook{Body: body("settlement", "", "")})
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := m.ParseWebhook(context.Background(), Webhook{Body: []byte("not json")})
		assert.ErrorIs(t, err, ErrMalformedWebhook)
	})
}

func TestMapMidtransStatus(t *testing.T) {
	tests := []struct {
		status, fraud string
		want          Status
	}{
		{"capture", "accept", StatusCompleted},
		{"capture", "challenge", StatusPending},
		{"capture", "deny", StatusFailed},
		{"settlement", "", StatusCompleted},
		{"pending", "", StatusPending},
		{"deny", "", StatusFailed},
		{"cancel", "", StatusFailed},
		{"expire", "", StatusFailed},
		{"failure", "", StatusFailed},
		{"refund", "", StatusRefunded},
		{"partial_refund", "", StatusRefunded},
		{"something_new", "", StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.fraud, func(t *testing.T) {
			assert.Equal(t, tt.want, mapMidtransStatus(tt.status, tt.fraud))
		})
	}
}

func TestPayloadJSON(t *testing.T) {
	assert.JSONEq(t, `{"a":1}`, string(PayloadJSON(Webhook{Body: []byte(`{"a":1}`)})))
	assert.JSONEq(t, `{"tran_id":"T1","status":"VALID"}`, string(PayloadJSON(Webhook{Body: []byte("tran_id=T1&status=VALID")})))
}
