package notification

import (
	"context"

	"github.com/biashara/backend/internal/domain/sales"
	"go.uber.org/zap"
)

// NopDispatcher implements sales.Notifier by logging instead of delivering.
// Used when no notification backend is configured.
type NopDispatcher struct {
	logger *zap.Logger
}

// NewNopDispatcher creates a new no-op dispatcher
func NewNopDispatcher(logger *zap.Logger) *NopDispatcher {
	return &NopDispatcher{logger: logger}
}

// SendPaymentConfirmation logs the confirmation instead of sending it
func (d *NopDispatcher) SendPaymentConfirmation(ctx context.Context, order *sales.PaymentOrder) error {
	d.logger.Info("payment confirmation suppressed, no notification backend configured",
		zap.String("order_number", order.OrderNumber),
	)
	return nil
}

// SendNewOrderAlert logs the alert instead of sending it
func (d *NopDispatcher) SendNewOrderAlert(ctx context.Context, order *sales.PaymentOrder, store *sales.Store) error {
	fields := []zap.Field{zap.String("order_number", order.OrderNumber)}
	if store != nil {
		fields = append(fields, zap.String("store", store.Name))
	}
	d.logger.Info("new order alert suppressed, no notification backend configured", fields...)
	return nil
}

// Ensure NopDispatcher implements sales.Notifier
var _ sales.Notifier = (*NopDispatcher)(nil)
