package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{9.99, 999},
		{10, 1000},
		{0.1, 10},
		{3.25, 325},
		{24.50, 2450},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MinorUnits(tt.amount), "amount %v", tt.amount)
	}
}

// signPayload builds a Stripe-Signature header the same way Stripe
// does: v1 = HMAC-SHA256(secret, "<timestamp>.<payload>").
func signPayload(secret string, ts time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestStripe_VerifyEvent_CheckoutCompleted(t *testing.T) {
	const secret = "whsec_test"
	s := NewStripe("sk_test", secret, "http://localhost:3000")

	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"metadata": {"order_id": "order-123"}}}
	}`)

	event, err := s.VerifyEvent(payload, signPayload(secret, time.Now(), payload))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.True(t, event.Completed)
	assert.Equal(t, "order-123", event.OrderID)
}

func TestStripe_VerifyEvent_IgnoredType(t *testing.T) {
	const secret = "whsec_test"
	s := NewStripe("sk_test", secret, "http://localhost:3000")

	payload := []byte(`{"id": "evt_2", "type": "payment_intent.created", "data": {"object": {}}}`)

	event, err := s.VerifyEvent(payload, signPayload(secret, time.Now(), payload))
	require.NoError(t, err)
	assert.False(t, event.Completed)
	assert.Empty(t, event.OrderID)
}

func TestStripe_VerifyEvent_BadSignature(t *testing.T) {
	s := NewStripe("sk_test", "whsec_test", "http://localhost:3000")

	payload := []byte(`{"id": "evt_3", "type": "checkout.session.completed", "data": {"object": {}}}`)

	_, err := s.VerifyEvent(payload, signPayload("whsec_other", time.Now(), payload))
	assert.Error(t, err)
}

func TestStripe_VerifyEvent_TamperedPayload(t *testing.T) {
	const secret = "whsec_test"
	s := NewStripe("sk_test", secret, "http://localhost:3000")

	payload := []byte(`{"id": "evt_4", "type": "checkout.session.completed", "data": {"object": {}}}`)
	header := signPayload(secret, time.Now(), payload)

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-1] = ' '

	_, err := s.VerifyEvent(tampered, header)
	assert.Error(t, err)
}
