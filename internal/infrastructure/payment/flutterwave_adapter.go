package payment

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/biashara/backend/internal/domain/sales"
)

// flutterwaveChargeCompleted is the only event type acted on; everything else
// is acknowledged and ignored
const flutterwaveChargeCompleted = "charge.completed"

// FlutterwaveAdapter implements WebhookProvider for Flutterwave. Flutterwave
// signs deliveries by echoing a shared secret in the verif-hash header.
type FlutterwaveAdapter struct {
	config *FlutterwaveConfig
}

// NewFlutterwaveAdapter creates a new Flutterwave webhook adapter
func NewFlutterwaveAdapter(config *FlutterwaveConfig) (*FlutterwaveAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &FlutterwaveAdapter{config: config}, nil
}

// ProviderType returns the provider this adapter serves
func (a *FlutterwaveAdapter) ProviderType() sales.ProviderType {
	return sales.ProviderTypeFlutterwave
}

// VerifyEvent checks the verif-hash header against the configured secret and
// parses the payload into a normalized PaymentEvent
func (a *FlutterwaveAdapter) VerifyEvent(ctx context.Context, payload []byte, signature string) (*sales.PaymentEvent, error) {
	if signature == "" {
		return nil, sales.ErrWebhookSignature
	}
	if subtle.ConstantTimeCompare([]byte(signature), []byte(a.config.SecretHash)) != 1 {
		return nil, sales.ErrWebhookSignature
	}

	var evt flutterwaveEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", sales.ErrWebhookInvalidPayload, err)
	}

	normalized := &sales.PaymentEvent{
		Provider:     sales.ProviderTypeFlutterwave,
		EventType:    evt.Event,
		TxRef:        evt.Data.TxRef,
		Amount:       evt.Data.Amount,
		Currency:     evt.Data.Currency,
		ProviderTxID: strconv.FormatInt(evt.Data.ID, 10),
		Status:       mapFlutterwaveStatus(evt.Event, evt.Data.Status),
	}

	if normalized.Status != sales.EventStatusIgnored && normalized.TxRef == "" {
		return nil, fmt.Errorf("%w: missing tx_ref", sales.ErrWebhookInvalidPayload)
	}

	return normalized, nil
}

// mapFlutterwaveStatus maps a Flutterwave event to the normalized status
func mapFlutterwaveStatus(eventType, status string) sales.EventStatus {
	if eventType != flutterwaveChargeCompleted {
		return sales.EventStatusIgnored
	}
	switch status {
	case "successful":
		return sales.EventStatusSuccessful
	case "failed":
		return sales.EventStatusFailed
	default:
		return sales.EventStatusIgnored
	}
}

// Ensure FlutterwaveAdapter implements WebhookProvider
var _ sales.WebhookProvider = (*FlutterwaveAdapter)(nil)
