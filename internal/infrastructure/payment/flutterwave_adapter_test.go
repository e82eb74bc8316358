package payment

import (
	"context"
	"testing"

	"github.com/biashara/backend/internal/domain/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretHash = "flw-secret-hash"

func newFlutterwaveAdapter(t *testing.T) *FlutterwaveAdapter {
	t.Helper()
	adapter, err := NewFlutterwaveAdapter(&FlutterwaveConfig{SecretHash: testSecretHash})
	require.NoError(t, err)
	return adapter
}

func TestNewFlutterwaveAdapter_RequiresSecret(t *testing.T) {
	_, err := NewFlutterwaveAdapter(&FlutterwaveConfig{})
	assert.Error(t, err)
}

func TestFlutterwaveVerifyEvent_ValidDelivery(t *testing.T) {
	adapter := newFlutterwaveAdapter(t)
	payload := []byte(`{
		"event": "charge.completed",
		"data": {
			"id": 9182736,
			"tx_ref": "tx_abc123",
			"status": "successful",
			"amount": 5000,
			"currency": "NGN"
		}
	}`)

	event, err := adapter.VerifyEvent(context.Background(), payload, testSecretHash)

	require.NoError(t, err)
	assert.Equal(t, sales.ProviderTypeFlutterwave, event.Provider)
	assert.Equal(t, sales.EventStatusSuccessful, event.Status)
	assert.Equal(t, "tx_abc123", event.TxRef)
	assert.Equal(t, "9182736", event.ProviderTxID)
	assert.Equal(t, "NGN", event.Currency)
	assert.Equal(t, "5000", event.Amount.String())
}

func TestFlutterwaveVerifyEvent_MissingSignature(t *testing.T) {
	adapter := newFlutterwaveAdapter(t)

	_, err := adapter.VerifyEvent(context.Background(), []byte(`{}`), "")

	assert.ErrorIs(t, err, sales.ErrWebhookSignature)
}

func TestFlutterwaveVerifyEvent_WrongSignature(t *testing.T) {
	adapter := newFlutterwaveAdapter(t)

	_, err := adapter.VerifyEvent(context.Background(), []byte(`{}`), "wrong-hash")

	assert.ErrorIs(t, err, sales.ErrWebhookSignature)
}

func TestFlutterwaveVerifyEvent_MalformedBody(t *testing.T) {
	adapter := newFlutterwaveAdapter(t)

	_, err := adapter.VerifyEvent(context.Background(), []byte(`{not json`), testSecretHash)

	assert.ErrorIs(t, err, sales.ErrWebhookInvalidPayload)
}

func TestFlutterwaveVerifyEvent_FailedCharge(t *testing.T) {
	adapter := newFlutterwaveAdapter(t)
	payload := []byte(`{"event":"charge.completed","data":{"id":1,"tx_ref":"tx_1","status":"failed","amount":100,"currency":"NGN"}}`)

	event, err := adapter.VerifyEvent(context.Background(), payload, testSecretHash)

	require.NoError(t, err)
	assert.Equal(t, sales.EventStatusFailed, event.Status)
}

func TestFlutterwaveVerifyEvent_UnrecognizedEventIgnored(t *testing.T) {
	adapter := newFlutterwaveAdapter(t)
	payload := []byte(`{"event":"transfer.completed","data":{"id":1,"status":"successful"}}`)

	event, err := adapter.VerifyEvent(context.Background(), payload, testSecretHash)

	require.NoError(t, err)
	assert.Equal(t, sales.EventStatusIgnored, event.Status)
}

func TestFlutterwaveVerifyEvent_SuccessWithoutTxRef(t *testing.T) {
	adapter := newFlutterwaveAdapter(t)
	payload := []byte(`{"event":"charge.completed","data":{"id":1,"status":"successful","amount":100,"currency":"NGN"}}`)

	_, err := adapter.VerifyEvent(context.Background(), payload, testSecretHash)

	assert.ErrorIs(t, err, sales.ErrWebhookInvalidPayload)
}
