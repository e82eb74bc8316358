package sales

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Webhook verification errors
var (
	// ErrWebhookSignature is returned when an event fails authenticity
	// verification; the payload must not be trusted in any way.
	ErrWebhookSignature = errors.New("webhook: signature verification failed")
	// ErrWebhookInvalidPayload is returned when a verified body cannot be parsed
	ErrWebhookInvalidPayload = errors.New("webhook: invalid payload")
)

// ProviderType identifies an external payment provider
type ProviderType string

const (
	// ProviderTypeFlutterwave is the Flutterwave payment provider
	ProviderTypeFlutterwave ProviderType = "FLUTTERWAVE"
	// ProviderTypePaystack is the Paystack payment provider
	ProviderTypePaystack ProviderType = "PAYSTACK"
)

// String returns the string representation of the provider type
func (t ProviderType) String() string {
	return string(t)
}

// IsValid returns true if the provider type is known
func (t ProviderType) IsValid() bool {
	switch t {
	case ProviderTypeFlutterwave, ProviderTypePaystack:
		return true
	default:
		return false
	}
}

// EventStatus is the normalized outcome carried by a provider event
type EventStatus string

const (
	// EventStatusSuccessful indicates the provider confirmed the payment
	EventStatusSuccessful EventStatus = "successful"
	// EventStatusFailed indicates the provider reported a failed payment
	EventStatusFailed EventStatus = "failed"
	// EventStatusIgnored indicates an event type this system intentionally
	// does not act on; it must still be acknowledged so the provider stops
	// retrying.
	EventStatusIgnored EventStatus = "ignored"
)

// PaymentEvent is the provider-agnostic view of a verified webhook event
type PaymentEvent struct {
	Provider  ProviderType
	EventType string
	// TxRef is the payment reference / idempotency key correlating the event
	// to exactly one order.
	TxRef    string
	Status   EventStatus
	Amount   decimal.Decimal
	Currency string
	// ProviderTxID is the provider's own transaction identifier
	ProviderTxID string
}

// WebhookProvider verifies and parses inbound provider callbacks. Each
// provider variant implements its own signature/secret scheme.
type WebhookProvider interface {
	// ProviderType returns the provider this adapter serves
	ProviderType() ProviderType

	// VerifyEvent checks event authenticity using the provider's signature
	// scheme and parses the payload into a normalized PaymentEvent. A
	// missing or invalid signature returns ErrWebhookSignature and the
	// payload must be discarded untrusted.
	VerifyEvent(ctx context.Context, payload []byte, signature string) (*PaymentEvent, error)
}
