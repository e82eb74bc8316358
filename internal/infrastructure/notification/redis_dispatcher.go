package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/biashara/backend/internal/domain/sales"
	"github.com/redis/go-redis/v9"
)

// message is the envelope pushed onto the outbound notification queue; a
// separate worker drains the queue and delivers email/SMS.
type message struct {
	Kind          string    `json:"kind"`
	Sender        string    `json:"sender"`
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	StoreID       string    `json:"store_id"`
	StoreName     string    `json:"store_name,omitempty"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	Total         string    `json:"total"`
	QueuedAt      time.Time `json:"queued_at"`
}

// Notification kinds
const (
	kindPaymentConfirmation = "payment_confirmation"
	kindNewOrderAlert       = "new_order_alert"
)

// RedisDispatcher implements sales.Notifier by queueing notifications in a
// Redis list for asynchronous delivery
type RedisDispatcher struct {
	client    *redis.Client
	queueName string
	sender    string
}

// NewRedisDispatcher creates a new Redis-backed notification dispatcher
func NewRedisDispatcher(client *redis.Client, queueName, sender string) *RedisDispatcher {
	return &RedisDispatcher{
		client:    client,
		queueName: queueName,
		sender:    sender,
	}
}

// SendPaymentConfirmation queues a payment confirmation for the customer
func (d *RedisDispatcher) SendPaymentConfirmation(ctx context.Context, order *sales.PaymentOrder) error {
	return d.enqueue(ctx, kindPaymentConfirmation, order, "")
}

// SendNewOrderAlert queues a confirmed-order alert for the store's staff
func (d *RedisDispatcher) SendNewOrderAlert(ctx context.Context, order *sales.PaymentOrder, store *sales.Store) error {
	storeName := ""
	if store != nil {
		storeName = store.Name
	}
	return d.enqueue(ctx, kindNewOrderAlert, order, storeName)
}

func (d *RedisDispatcher) enqueue(ctx context.Context, kind string, order *sales.PaymentOrder, storeName string) error {
	msg := message{
		Kind:          kind,
		Sender:        d.sender,
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		StoreID:       order.StoreID.String(),
		StoreName:     storeName,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
		Total:         order.Total.String(),
		QueuedAt:      time.Now(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notification: failed to marshal message: %w", err)
	}

	if err := d.client.LPush(ctx, d.queueName, payload).Err(); err != nil {
		return fmt.Errorf("notification: failed to enqueue %s: %w", kind, err)
	}
	return nil
}

// Ensure RedisDispatcher implements sales.Notifier
var _ sales.Notifier = (*RedisDispatcher)(nil)
