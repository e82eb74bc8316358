package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/biashara/backend/internal/domain/sales"
	"github.com/biashara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mocks
// =============================================================================

type MockWebhookProvider struct {
	mock.Mock
}

func (m *MockWebhookProvider) ProviderType() sales.ProviderType {
	args := m.Called()
	return args.Get(0).(sales.ProviderType)
}

func (m *MockWebhookProvider) VerifyEvent(ctx context.Context, payload []byte, signature string) (*sales.PaymentEvent, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.PaymentEvent), args.Error(1)
}

type MockPaymentOrderRepository struct {
	mock.Mock
}

func (m *MockPaymentOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.PaymentOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.PaymentOrder), args.Error(1)
}

func (m *MockPaymentOrderRepository) FindByTxRef(ctx context.Context, txRef string) (*sales.PaymentOrder, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.PaymentOrder), args.Error(1)
}

func (m *MockPaymentOrderRepository) Create(ctx context.Context, order *sales.PaymentOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPaymentOrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, id, paidAt)
	return args.Bool(0), args.Error(1)
}

type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Store), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendPaymentConfirmation(ctx context.Context, order *sales.PaymentOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockNotifier) SendNewOrderAlert(ctx context.Context, order *sales.PaymentOrder, store *sales.Store) error {
	args := m.Called(ctx, order, store)
	return args.Error(0)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// =============================================================================
// Helpers
// =============================================================================

func successfulEvent(txRef string) *sales.PaymentEvent {
	return &sales.PaymentEvent{
		Provider:     sales.ProviderTypeFlutterwave,
		EventType:    "charge.completed",
		TxRef:        txRef,
		Amount:       decimal.NewFromInt(5000),
		Currency:     "NGN",
		ProviderTxID: "12345",
		Status:       sales.EventStatusSuccessful,
	}
}

func unpaidOrder(t *testing.T, txRef string) *sales.PaymentOrder {
	t.Helper()
	order, err := sales.NewPaymentOrder(
		uuid.New(), uuid.New(), "ORD-0001", txRef,
		decimal.NewFromInt(5000), nil,
	)
	require.NoError(t, err)
	return order
}

type webhookFixture struct {
	provider  *MockWebhookProvider
	repo      *MockPaymentOrderRepository
	storeRepo *MockStoreRepository
	notifier  *MockNotifier
	store     *MockIdempotencyStore
	service   *WebhookService
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	provider := new(MockWebhookProvider)
	provider.On("ProviderType").Return(sales.ProviderTypeFlutterwave)
	repo := new(MockPaymentOrderRepository)
	storeRepo := new(MockStoreRepository)
	notifier := new(MockNotifier)
	store := new(MockIdempotencyStore)

	service := NewWebhookService(WebhookServiceConfig{
		Providers:        []sales.WebhookProvider{provider},
		OrderRepo:        repo,
		StoreRepo:        storeRepo,
		Notifier:         notifier,
		IdempotencyStore: store,
	})

	return &webhookFixture{
		provider:  provider,
		repo:      repo,
		storeRepo: storeRepo,
		notifier:  notifier,
		store:     store,
		service:   service,
	}
}

func storeFor(order *sales.PaymentOrder) *sales.Store {
	store := &sales.Store{Name: "Main Street", Slug: "main-street"}
	store.OrganizationID = order.OrganizationID
	store.ID = order.StoreID
	return store
}

// =============================================================================
// Tests
// =============================================================================

func TestProcessEvent_ReconcilesUnpaidOrder(t *testing.T) {
	f := newWebhookFixture(t)
	order := unpaidOrder(t, "tx_1")

	f.provider.On("VerifyEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(successfulEvent("tx_1"), nil)
	f.repo.On("FindByTxRef", mock.Anything, "tx_1").Return(order, nil)
	f.store.On("MarkProcessed", mock.Anything, "payment:FLUTTERWAVE:tx_1", mock.Anything).Return(true, nil)
	f.repo.On("MarkPaid", mock.Anything, order.ID, mock.Anything).Return(true, nil)
	store := storeFor(order)
	f.storeRepo.On("FindByID", mock.Anything, order.StoreID).Return(store, nil)
	f.notifier.On("SendPaymentConfirmation", mock.Anything, order).Return(nil)
	f.notifier.On("SendNewOrderAlert", mock.Anything, order, store).Return(nil)

	result, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypeFlutterwave, []byte(`{}`), "sig")

	require.NoError(t, err)
	assert.True(t, result.Accepted)
	assert.False(t, result.AlreadyProcessed)
	f.repo.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestProcessEvent_UnregisteredProvider(t *testing.T) {
	f := newWebhookFixture(t)

	_, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypePaystack, []byte(`{}`), "sig")

	assert.ErrorIs(t, err, ErrProviderNotRegistered)
}

func TestProcessEvent_SignatureFailureChangesNothing(t *testing.T) {
	f := newWebhookFixture(t)
	f.provider.On("VerifyEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, sales.ErrWebhookSignature)

	_, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypeFlutterwave, []byte(`{}`), "bad")

	assert.ErrorIs(t, err, sales.ErrWebhookSignature)
	f.repo.AssertNotCalled(t, "FindByTxRef", mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_IgnoredEventAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)
	event := successfulEvent("tx_1")
	event.Status = sales.EventStatusIgnored
	f.provider.On("VerifyEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)

	result, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypeFlutterwave, []byte(`{}`), "sig")

	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Equal(t, "event_ignored", result.Reason)
	f.repo.AssertNotCalled(t, "FindByTxRef", mock.Anything, mock.Anything)
}

func TestProcessEvent_FailedEventAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)
	event := successfulEvent("tx_1")
	event.Status = sales.EventStatusFailed
	f.provider.On("VerifyEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)

	result, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypeFlutterwave, []byte(`{}`), "sig")

	require.NoError(t, err)
	assert.True(t, result.Ignored)
	f.repo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_UnknownTxRefAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)
	f.provider.On("VerifyEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(successfulEvent("tx_missing"), nil)
	f.repo.On("FindByTxRef", mock.Anything, "tx_missing").Return(nil, shared.ErrNotFound)

	result, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypeFlutterwave, []byte(`{}`), "sig")

	require.NoError(t, err)
	assert.True(t, result.Ignored)
	assert.Equal(t, "order_not_found", result.Reason)
}

func TestProcessEvent_AlreadyPaidOrderShortCircuits(t *testing.T) {
	f := newWebhookFixture(t)
	order := unpaidOrder(t, "tx_1")
	require.NoError(t, order.MarkPaid(time.Now()))

	f.provider.On("VerifyEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(successfulEvent("tx_1"), nil)
	f.repo.On("FindByTxRef", mock.Anything, "tx_1").Return(order, nil)

	result, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypeFlutterwave, []byte(`{}`), "sig")

	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	f.repo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "SendPaymentConfirmation", mock.Anything, mock.Anything)
}

func TestProcessEvent_DuplicateDeliveryStoppedByClaim(t *testing.T) {
	f := newWebhookFixture(t)
	order := unpaidOrder(t, "tx_1")

	f.provider.On("VerifyEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(successfulEvent("tx_1"), nil)
	f.repo.On("FindByTxRef", mock.Anything, "tx_1").Return(order, nil)
	f.store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	result, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypeFlutterwave, []byte(`{}`), "sig")

	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	f.repo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEvent_ConcurrentDeliveryLosesConditionalUpdate(t *testing.T) {
	f := newWebhookFixture(t)
	order := unpaidOrder(t, "tx_1")

	f.provider.On("VerifyEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(successfulEvent("tx_1"), nil)
	f.repo.On("FindByTxRef", mock.Anything, "tx_1").Return(order, nil)
	f.store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.repo.On("MarkPaid", mock.Anything, order.ID, mock.Anything).Return(false, nil)

	result, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypeFlutterwave, []byte(`{}`), "sig")

	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	f.notifier.AssertNotCalled(t, "SendPaymentConfirmation", mock.Anything, mock.Anything)
}

func TestProcessEvent_StoreFailureFallsBackToConditionalUpdate(t *testing.T) {
	f := newWebhookFixture(t)
	order := unpaidOrder(t, "tx_1")

	f.provider.On("VerifyEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(successfulEvent("tx_1"), nil)
	f.repo.On("FindByTxRef", mock.Anything, "tx_1").Return(order, nil)
	f.store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).
		Return(false, errors.New("redis down"))
	f.repo.On("MarkPaid", mock.Anything, order.ID, mock.Anything).Return(true, nil)
	store := storeFor(order)
	f.storeRepo.On("FindByID", mock.Anything, order.StoreID).Return(store, nil)
	f.notifier.On("SendPaymentConfirmation", mock.Anything, order).Return(nil)
	f.notifier.On("SendNewOrderAlert", mock.Anything, order, store).Return(nil)

	result, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypeFlutterwave, []byte(`{}`), "sig")

	require.NoError(t, err)
	assert.True(t, result.Accepted)
}

func TestProcessEvent_MarkPaidErrorReleasesClaim(t *testing.T) {
	f := newWebhookFixture(t)
	order := unpaidOrder(t, "tx_1")

	f.provider.On("VerifyEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(successfulEvent("tx_1"), nil)
	f.repo.On("FindByTxRef", mock.Anything, "tx_1").Return(order, nil)
	f.store.On("MarkProcessed", mock.Anything, "payment:FLUTTERWAVE:tx_1", mock.Anything).Return(true, nil)
	f.repo.On("MarkPaid", mock.Anything, order.ID, mock.Anything).
		Return(false, errors.New("connection reset"))
	f.store.On("Release", mock.Anything, "payment:FLUTTERWAVE:tx_1").Return(nil)

	_, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypeFlutterwave, []byte(`{}`), "sig")

	assert.Error(t, err)
	f.store.AssertCalled(t, "Release", mock.Anything, "payment:FLUTTERWAVE:tx_1")
}

func TestProcessEvent_NotificationFailureDoesNotFailDelivery(t *testing.T) {
	f := newWebhookFixture(t)
	order := unpaidOrder(t, "tx_1")

	f.provider.On("VerifyEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(successfulEvent("tx_1"), nil)
	f.repo.On("FindByTxRef", mock.Anything, "tx_1").Return(order, nil)
	f.store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.repo.On("MarkPaid", mock.Anything, order.ID, mock.Anything).Return(true, nil)
	f.storeRepo.On("FindByID", mock.Anything, order.StoreID).Return(nil, errors.New("db down"))
	f.notifier.On("SendPaymentConfirmation", mock.Anything, order).Return(errors.New("smtp down"))
	f.notifier.On("SendNewOrderAlert", mock.Anything, order, (*sales.Store)(nil)).Return(errors.New("smtp down"))

	result, err := f.service.ProcessEvent(context.Background(), sales.ProviderTypeFlutterwave, []byte(`{}`), "sig")

	require.NoError(t, err)
	assert.True(t, result.Accepted)
}
