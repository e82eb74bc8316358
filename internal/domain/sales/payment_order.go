package sales

import (
	"encoding/json"
	"time"

	"github.com/biashara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the payment state of an order
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// OrderStatus is the fulfillment state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
)

// OrderItem is one line item on a payment order
type OrderItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// PaymentOrder is the reconciliation view of a checkout order. TxRef is the
// idempotency key supplied at checkout time; the payment status transitions
// unpaid -> paid at most once per TxRef and never back.
type PaymentOrder struct {
	shared.OrgAggregateRoot
	StoreID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderNumber   string          `gorm:"type:varchar(50);not null"`
	TxRef         string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'unpaid'"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'"`
	PaidAt        *time.Time      ``
	CustomerName  string          `gorm:"type:varchar(200)"`
	CustomerEmail string          `gorm:"type:varchar(200)"`
	CustomerPhone string          `gorm:"type:varchar(50)"`
	Total         decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Items         string          `gorm:"type:text;not null;default:'[]'"` // JSON array of line items
}

// TableName returns the table name for GORM
func (PaymentOrder) TableName() string {
	return "payment_orders"
}

// NewPaymentOrder creates an unpaid pending order for a store checkout
func NewPaymentOrder(orgID, storeID uuid.UUID, orderNumber, txRef string, total decimal.Decimal, items []OrderItem) (*PaymentOrder, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if txRef == "" {
		return nil, shared.NewDomainError("INVALID_TX_REF", "Payment reference cannot be empty")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Order total cannot be negative")
	}

	return &PaymentOrder{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		StoreID:          storeID,
		OrderNumber:      orderNumber,
		TxRef:            txRef,
		PaymentStatus:    PaymentStatusUnpaid,
		Status:           OrderStatusPending,
		Total:            total,
		Items:            encodeItems(items),
	}, nil
}

// IsPaid reports whether the order has completed payment
func (o *PaymentOrder) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// MarkPaid transitions the order to paid/confirmed. The persistence layer
// must apply this through a conditional update on the current payment status;
// this method only validates and mirrors the transition on the aggregate.
func (o *PaymentOrder) MarkPaid(paidAt time.Time) error {
	if o.IsPaid() {
		return shared.ErrAlreadyProcessed
	}
	o.PaymentStatus = PaymentStatusPaid
	o.Status = OrderStatusConfirmed
	o.PaidAt = &paidAt
	o.UpdatedAt = paidAt
	o.IncrementVersion()

	o.AddDomainEvent(NewPaymentOrderPaidEvent(o))

	return nil
}

// LineItems returns the decoded line items
func (o *PaymentOrder) LineItems() []OrderItem {
	if o.Items == "" {
		return []OrderItem{}
	}
	var items []OrderItem
	if err := json.Unmarshal([]byte(o.Items), &items); err != nil {
		return []OrderItem{}
	}
	return items
}

func encodeItems(items []OrderItem) string {
	if items == nil {
		items = []OrderItem{}
	}
	bytes, _ := json.Marshal(items)
	return string(bytes)
}

// Store is the minimal read-side store relation the reconciler needs to map
// an order back to its owning organization. The reconciler only reads this,
// never creates it.
type Store struct {
	shared.OrgAggregateRoot
	Name string `gorm:"type:varchar(200);not null"`
	Slug string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}
