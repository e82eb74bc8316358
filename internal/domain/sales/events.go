package sales

import (
	"github.com/biashara/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for the sales domain
const (
	EventTypePaymentOrderPaid = "sales.payment_order.paid"
)

// PaymentOrderPaidEvent is published after an order completes its paid
// transition
type PaymentOrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderNumber   string          `json:"order_number"`
	TxRef         string          `json:"tx_ref"`
	Total         decimal.Decimal `json:"total"`
	CustomerEmail string          `json:"customer_email"`
}

// NewPaymentOrderPaidEvent creates a PaymentOrderPaidEvent
func NewPaymentOrderPaidEvent(order *PaymentOrder) *PaymentOrderPaidEvent {
	return &PaymentOrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentOrderPaid, "PaymentOrder", order.ID, order.OrganizationID),
		OrderNumber:     order.OrderNumber,
		TxRef:           order.TxRef,
		Total:           order.Total,
		CustomerEmail:   order.CustomerEmail,
	}
}
