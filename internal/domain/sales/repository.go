package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentOrderRepository defines the interface for payment order persistence
type PaymentOrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentOrder, error)

	// FindByTxRef finds the order whose idempotency key equals the given
	// payment reference. Returns shared.ErrNotFound on a miss.
	FindByTxRef(ctx context.Context, txRef string) (*PaymentOrder, error)

	// Create inserts a new order
	Create(ctx context.Context, order *PaymentOrder) error

	// MarkPaid atomically transitions the order to paid/confirmed if and only
	// if its payment status is still unpaid (a compare-and-set, not a
	// read-then-write). Returns true when this call performed the transition,
	// false when another delivery already did.
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
}

// StoreRepository defines the read-side interface for stores
type StoreRepository interface {
	// FindByID finds a store by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
}

// Notifier dispatches post-payment notifications. Dispatch is best-effort:
// failures are observed through logs only and never reverse the committed
// payment transition.
type Notifier interface {
	// SendPaymentConfirmation notifies the customer their payment completed
	SendPaymentConfirmation(ctx context.Context, order *PaymentOrder) error

	// SendNewOrderAlert notifies the store's staff of a confirmed order.
	// The store may be nil when its lookup failed; the alert still goes out
	// addressed by the order's store ID.
	SendNewOrderAlert(ctx context.Context, order *PaymentOrder, store *Store) error
}
