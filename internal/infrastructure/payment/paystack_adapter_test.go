package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/biashara/backend/internal/domain/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPaystackSecret = "sk_test_abc123"

func newPaystackAdapter(t *testing.T) *PaystackAdapter {
	t.Helper()
	adapter, err := NewPaystackAdapter(&PaystackConfig{SecretKey: testPaystackSecret})
	require.NoError(t, err)
	return adapter
}

func signPaystack(payload []byte) string {
	mac := hmac.New(sha512.New, []byte(testPaystackSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestNewPaystackAdapter_RequiresSecret(t *testing.T) {
	_, err := NewPaystackAdapter(&PaystackConfig{})
	assert.Error(t, err)
}

func TestPaystackVerifyEvent_ValidDelivery(t *testing.T) {
	adapter := newPaystackAdapter(t)
	payload := []byte(`{
		"event": "charge.success",
		"data": {
			"id": 302961,
			"reference": "tx_abc123",
			"amount": 500000,
			"currency": "NGN"
		}
	}`)

	event, err := adapter.VerifyEvent(context.Background(), payload, signPaystack(payload))

	require.NoError(t, err)
	assert.Equal(t, sales.ProviderTypePaystack, event.Provider)
	assert.Equal(t, sales.EventStatusSuccessful, event.Status)
	assert.Equal(t, "tx_abc123", event.TxRef)
	assert.Equal(t, "302961", event.ProviderTxID)
	// Amount arrives in kobo and is normalized to the major unit
	assert.Equal(t, "5000", event.Amount.String())
}

func TestPaystackVerifyEvent_MissingSignature(t *testing.T) {
	adapter := newPaystackAdapter(t)

	_, err := adapter.VerifyEvent(context.Background(), []byte(`{}`), "")

	assert.ErrorIs(t, err, sales.ErrWebhookSignature)
}

func TestPaystackVerifyEvent_TamperedBody(t *testing.T) {
	adapter := newPaystackAdapter(t)
	payload := []byte(`{"event":"charge.success","data":{"id":1,"reference":"tx_1","amount":100}}`)
	signature := signPaystack(payload)
	tampered := []byte(`{"event":"charge.success","data":{"id":1,"reference":"tx_2","amount":100}}`)

	_, err := adapter.VerifyEvent(context.Background(), tampered, signature)

	assert.ErrorIs(t, err, sales.ErrWebhookSignature)
}

func TestPaystackVerifyEvent_MalformedBody(t *testing.T) {
	adapter := newPaystackAdapter(t)
	payload := []byte(`{not json`)

	_, err := adapter.VerifyEvent(context.Background(), payload, signPaystack(payload))

	assert.ErrorIs(t, err, sales.ErrWebhookInvalidPayload)
}

func TestPaystackVerifyEvent_UnrecognizedEventIgnored(t *testing.T) {
	adapter := newPaystackAdapter(t)
	payload := []byte(`{"event":"subscription.create","data":{"id":1}}`)

	event, err := adapter.VerifyEvent(context.Background(), payload, signPaystack(payload))

	require.NoError(t, err)
	assert.Equal(t, sales.EventStatusIgnored, event.Status)
}

func TestPaystackVerifyEvent_FailedCharge(t *testing.T) {
	adapter := newPaystackAdapter(t)
	payload := []byte(`{"event":"charge.failed","data":{"id":1,"reference":"tx_1","amount":100,"currency":"NGN"}}`)

	event, err := adapter.VerifyEvent(context.Background(), payload, signPaystack(payload))

	require.NoError(t, err)
	assert.Equal(t, sales.EventStatusFailed, event.Status)
}
