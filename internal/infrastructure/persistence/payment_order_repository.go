package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/biashara/backend/internal/domain/sales"
	"github.com/biashara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentOrderRepository implements PaymentOrderRepository using GORM
type GormPaymentOrderRepository struct {
	db *gorm.DB
}

// NewGormPaymentOrderRepository creates a new GormPaymentOrderRepository
func NewGormPaymentOrderRepository(db *gorm.DB) *GormPaymentOrderRepository {
	return &GormPaymentOrderRepository{db: db}
}

// FindByID finds an order by its ID
func (r *GormPaymentOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.PaymentOrder, error) {
	var order sales.PaymentOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByTxRef finds the order carrying the given payment reference
func (r *GormPaymentOrderRepository) FindByTxRef(ctx context.Context, txRef string) (*sales.PaymentOrder, error) {
	if txRef == "" {
		return nil, shared.NewDomainError("INVALID_TX_REF", "Payment reference cannot be empty")
	}
	var order sales.PaymentOrder
	if err := r.db.WithContext(ctx).
		Where("tx_ref = ?", txRef).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Create inserts a new order
func (r *GormPaymentOrderRepository) Create(ctx context.Context, order *sales.PaymentOrder) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// MarkPaid performs the unpaid -> paid transition as a single conditional
// update. The payment status predicate makes the write a compare-and-set:
// of any number of concurrent deliveries for the same order, exactly one
// observes RowsAffected == 1.
func (r *GormPaymentOrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&sales.PaymentOrder{}).
		Where("id = ? AND payment_status = ?", id, sales.PaymentStatusUnpaid).
		Updates(map[string]interface{}{
			"payment_status": sales.PaymentStatusPaid,
			"status":         sales.OrderStatusConfirmed,
			"paid_at":        paidAt,
			"updated_at":     paidAt,
			"version":        gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Ensure GormPaymentOrderRepository implements PaymentOrderRepository
var _ sales.PaymentOrderRepository = (*GormPaymentOrderRepository)(nil)
