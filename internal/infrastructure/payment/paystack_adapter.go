package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/biashara/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// Paystack event types acted on
const (
	paystackChargeSuccess = "charge.success"
	paystackChargeFailed  = "charge.failed"
)

// PaystackAdapter implements WebhookProvider for Paystack. Paystack signs
// each delivery with an HMAC-SHA512 of the raw request body keyed with the
// account's secret key.
type PaystackAdapter struct {
	config *PaystackConfig
}

// NewPaystackAdapter creates a new Paystack webhook adapter
func NewPaystackAdapter(config *PaystackConfig) (*PaystackAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PaystackAdapter{config: config}, nil
}

// ProviderType returns the provider this adapter serves
func (a *PaystackAdapter) ProviderType() sales.ProviderType {
	return sales.ProviderTypePaystack
}

// VerifyEvent recomputes the body HMAC and compares it to the
// x-paystack-signature header before parsing the payload
func (a *PaystackAdapter) VerifyEvent(ctx context.Context, payload []byte, signature string) (*sales.PaymentEvent, error) {
	if signature == "" {
		return nil, sales.ErrWebhookSignature
	}

	mac := hmac.New(sha512.New, []byte(a.config.SecretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, sales.ErrWebhookSignature
	}

	var evt paystackEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", sales.ErrWebhookInvalidPayload, err)
	}

	normalized := &sales.PaymentEvent{
		Provider:     sales.ProviderTypePaystack,
		EventType:    evt.Event,
		TxRef:        evt.Data.Reference,
		Amount:       subunitToMajor(evt.Data.Amount),
		Currency:     evt.Data.Currency,
		ProviderTxID: strconv.FormatInt(evt.Data.ID, 10),
		Status:       mapPaystackStatus(evt.Event),
	}

	if normalized.Status != sales.EventStatusIgnored && normalized.TxRef == "" {
		return nil, fmt.Errorf("%w: missing reference", sales.ErrWebhookInvalidPayload)
	}

	return normalized, nil
}

// subunitToMajor converts a subunit amount (kobo, pesewas) to the major unit
func subunitToMajor(amount decimal.Decimal) decimal.Decimal {
	return amount.Div(decimal.NewFromInt(100))
}

// mapPaystackStatus maps a Paystack event type to the normalized status
func mapPaystackStatus(eventType string) sales.EventStatus {
	switch eventType {
	case paystackChargeSuccess:
		return sales.EventStatusSuccessful
	case paystackChargeFailed:
		return sales.EventStatusFailed
	default:
		return sales.EventStatusIgnored
	}
}

// Ensure PaystackAdapter implements WebhookProvider
var _ sales.WebhookProvider = (*PaystackAdapter)(nil)
