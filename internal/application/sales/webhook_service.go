package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	appaudit "github.com/biashara/backend/internal/application/audit"
	"github.com/biashara/backend/internal/domain/audit"
	"github.com/biashara/backend/internal/domain/sales"
	"github.com/biashara/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Webhook processing errors
var (
	// ErrProviderNotRegistered is returned when no adapter serves the provider
	ErrProviderNotRegistered = errors.New("webhook: provider not registered")
)

// idempotencyTTL bounds how long a claimed delivery key blocks duplicates.
// The database conditional update stays correct after expiry; the claim only
// saves duplicate deliveries a round trip.
const idempotencyTTL = 24 * time.Hour

// WebhookResult is the outcome of processing one delivery, mapped by the
// transport layer onto provider acknowledgements
type WebhookResult struct {
	// Accepted is true when this delivery performed the paid transition
	Accepted bool
	// AlreadyProcessed is true when the order was paid before this delivery
	AlreadyProcessed bool
	// Ignored is true for unrecognized/non-success events and unknown
	// payment references; the provider still gets a 200 so it stops retrying
	Ignored bool
	// Reason is a short machine-readable label for logs and response bodies
	Reason string
}

// WebhookService reconciles verified payment provider events against orders.
// The unpaid -> paid transition happens exactly once per order no matter how
// many times a delivery is repeated.
type WebhookService struct {
	providers        map[sales.ProviderType]sales.WebhookProvider
	orderRepo        sales.PaymentOrderRepository
	storeRepo        sales.StoreRepository
	notifier         sales.Notifier
	idempotencyStore shared.IdempotencyStore
	eventPublisher   shared.EventPublisher
	recorder         *appaudit.Recorder
	logger           *zap.Logger
}

// WebhookServiceConfig holds dependencies for the webhook service
type WebhookServiceConfig struct {
	Providers        []sales.WebhookProvider
	OrderRepo        sales.PaymentOrderRepository
	StoreRepo        sales.StoreRepository
	Notifier         sales.Notifier
	IdempotencyStore shared.IdempotencyStore
	EventPublisher   shared.EventPublisher
	Recorder         *appaudit.Recorder
	Logger           *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(config WebhookServiceConfig) *WebhookService {
	providers := make(map[sales.ProviderType]sales.WebhookProvider)
	for _, p := range config.Providers {
		providers[p.ProviderType()] = p
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &WebhookService{
		providers:        providers,
		orderRepo:        config.OrderRepo,
		storeRepo:        config.StoreRepo,
		notifier:         config.Notifier,
		idempotencyStore: config.IdempotencyStore,
		eventPublisher:   config.EventPublisher,
		recorder:         config.Recorder,
		logger:           log,
	}
}

// RegisterProvider registers a provider adapter
func (s *WebhookService) RegisterProvider(provider sales.WebhookProvider) {
	s.providers[provider.ProviderType()] = provider
}

// ProcessEvent verifies and reconciles one webhook delivery.
//
// Pipeline: verify authenticity -> drop ignored events -> look up the order
// by payment reference -> short-circuit if already paid -> claim the delivery
// key -> conditional paid update -> best-effort notifications, audit and
// events. An authenticity failure returns sales.ErrWebhookSignature and
// changes no state.
func (s *WebhookService) ProcessEvent(ctx context.Context, providerType sales.ProviderType, payload []byte, signature string) (*WebhookResult, error) {
	provider, ok := s.providers[providerType]
	if !ok {
		return nil, ErrProviderNotRegistered
	}

	event, err := provider.VerifyEvent(ctx, payload, signature)
	if err != nil {
		if errors.Is(err, sales.ErrWebhookSignature) {
			s.logger.Warn("webhook signature verification failed",
				zap.String("provider", providerType.String()),
			)
			return nil, err
		}
		s.logger.Warn("webhook payload rejected",
			zap.String("provider", providerType.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("webhook event received",
		zap.String("provider", providerType.String()),
		zap.String("event_type", event.EventType),
		zap.String("tx_ref", event.TxRef),
		zap.String("status", string(event.Status)),
	)

	if event.Status != sales.EventStatusSuccessful {
		// Failed and unrecognized events are acknowledged so the provider
		// stops retrying; there is nothing to reconcile
		return &WebhookResult{Ignored: true, Reason: "event_ignored"}, nil
	}

	return s.reconcile(ctx, event)
}

// reconcile applies a verified successful payment event to its order
func (s *WebhookService) reconcile(ctx context.Context, event *sales.PaymentEvent) (*WebhookResult, error) {
	order, err := s.orderRepo.FindByTxRef(ctx, event.TxRef)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// A payment reference this system never issued; acknowledged so
			// the provider does not retry forever
			s.logger.Warn("webhook for unknown payment reference",
				zap.String("provider", event.Provider.String()),
				zap.String("tx_ref", event.TxRef),
			)
			return &WebhookResult{Ignored: true, Reason: "order_not_found"}, nil
		}
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}

	if order.IsPaid() {
		s.logger.Info("webhook for already paid order",
			zap.String("tx_ref", event.TxRef),
			zap.String("order_number", order.OrderNumber),
		)
		return &WebhookResult{AlreadyProcessed: true, Reason: "already_processed"}, nil
	}

	// Fast-path duplicate guard; the conditional update below remains the
	// source of truth when the store is unavailable or expired
	claimKey := claimKey(event)
	if s.idempotencyStore != nil {
		claimed, err := s.idempotencyStore.MarkProcessed(ctx, claimKey, idempotencyTTL)
		if err != nil {
			s.logger.Warn("idempotency store unavailable, relying on conditional update",
				zap.String("tx_ref", event.TxRef),
				zap.Error(err),
			)
		} else if !claimed {
			s.logger.Info("duplicate delivery stopped by idempotency claim",
				zap.String("tx_ref", event.TxRef),
			)
			return &WebhookResult{AlreadyProcessed: true, Reason: "already_processed"}, nil
		}
	}

	paidAt := time.Now()
	won, err := s.orderRepo.MarkPaid(ctx, order.ID, paidAt)
	if err != nil {
		// Release the claim so a provider retry can complete the transition
		if s.idempotencyStore != nil {
			if relErr := s.idempotencyStore.Release(ctx, claimKey); relErr != nil {
				s.logger.Warn("failed to release idempotency claim", zap.Error(relErr))
			}
		}
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}
	if !won {
		// A concurrent delivery performed the transition between our read
		// and the update
		s.logger.Info("paid transition already performed by concurrent delivery",
			zap.String("tx_ref", event.TxRef),
		)
		return &WebhookResult{AlreadyProcessed: true, Reason: "already_processed"}, nil
	}

	if err := order.MarkPaid(paidAt); err != nil && !errors.Is(err, shared.ErrAlreadyProcessed) {
		s.logger.Warn("failed to mirror paid transition on aggregate", zap.Error(err))
	}

	s.logger.Info("order reconciled as paid",
		zap.String("tx_ref", event.TxRef),
		zap.String("order_number", order.OrderNumber),
		zap.String("provider", event.Provider.String()),
		zap.String("amount", event.Amount.String()),
	)

	s.afterPaid(ctx, order, event)

	return &WebhookResult{Accepted: true, Reason: "reconciled"}, nil
}

// afterPaid runs the best-effort side effects of a completed transition.
// None of them can reverse the committed payment state; failures are logged.
func (s *WebhookService) afterPaid(ctx context.Context, order *sales.PaymentOrder, event *sales.PaymentEvent) {
	var store *sales.Store
	if s.storeRepo != nil {
		resolved, err := s.storeRepo.FindByID(ctx, order.StoreID)
		if err != nil {
			s.logger.Warn("failed to resolve store for order alert",
				zap.String("store_id", order.StoreID.String()),
				zap.Error(err),
			)
		} else {
			store = resolved
		}
	}

	if s.notifier != nil {
		if err := s.notifier.SendPaymentConfirmation(ctx, order); err != nil {
			s.logger.Warn("payment confirmation dispatch failed",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
		}
		if err := s.notifier.SendNewOrderAlert(ctx, order, store); err != nil {
			s.logger.Warn("new order alert dispatch failed",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
		}
	}

	if s.recorder != nil {
		s.recorder.Record(ctx, appaudit.Entry{
			OrganizationID: order.OrganizationID,
			ActorID:        nil, // system action
			Action:         audit.ActionUpdate,
			EntityType:     "payment_order",
			EntityID:       order.ID.String(),
			OldValues:      map[string]any{"payment_status": string(sales.PaymentStatusUnpaid)},
			NewValues: map[string]any{
				"payment_status": string(sales.PaymentStatusPaid),
				"provider":       event.Provider.String(),
				"provider_tx_id": event.ProviderTxID,
			},
		})
	}

	if s.eventPublisher != nil {
		events := order.GetDomainEvents()
		if len(events) > 0 {
			if err := s.eventPublisher.Publish(ctx, events...); err != nil {
				s.logger.Warn("failed to publish payment events", zap.Error(err))
			}
			order.ClearDomainEvents()
		}
	}
}

// claimKey builds the idempotency claim key for a delivery. Keyed by payment
// reference, not provider transaction ID, so replays with fresh provider IDs
// still collapse onto one transition.
func claimKey(event *sales.PaymentEvent) string {
	return fmt.Sprintf("payment:%s:%s", event.Provider, event.TxRef)
}
