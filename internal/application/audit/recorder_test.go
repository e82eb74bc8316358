package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/biashara/backend/internal/domain/audit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, record *audit.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditRepository) FindByOrganization(ctx context.Context, orgID uuid.UUID, filter audit.Filter) ([]audit.Record, error) {
	args := m.Called(ctx, orgID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Record), args.Error(1)
}

func TestRecord_AppendsRecord(t *testing.T) {
	repo := new(MockAuditRepository)
	recorder := NewRecorder(repo, nil)
	orgID := uuid.New()
	actorID := uuid.New()

	var captured *audit.Record
	repo.On("Append", mock.Anything, mock.AnythingOfType("*audit.Record")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*audit.Record)
		}).
		Return(nil)

	recorder.Record(context.Background(), Entry{
		OrganizationID: orgID,
		ActorID:        &actorID,
		Action:         audit.ActionUpdate,
		EntityType:     "payment_order",
		EntityID:       "order-1",
		OldValues:      map[string]any{"payment_status": "unpaid"},
		NewValues:      map[string]any{"payment_status": "paid"},
		ClientIP:       "203.0.113.9",
		UserAgent:      "provider-webhook/1.0",
	})

	require.NotNil(t, captured)
	assert.Equal(t, orgID, captured.OrganizationID)
	assert.Equal(t, audit.ActionUpdate, captured.Action)
	assert.Equal(t, "payment_order", captured.EntityType)
	assert.Contains(t, captured.OldValues, "unpaid")
	assert.Contains(t, captured.NewValues, "paid")
	assert.Equal(t, "203.0.113.9", captured.ClientIP)
}

func TestRecord_SystemActionHasNoActor(t *testing.T) {
	repo := new(MockAuditRepository)
	recorder := NewRecorder(repo, nil)

	var captured *audit.Record
	repo.On("Append", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*audit.Record)
		}).
		Return(nil)

	recorder.Record(context.Background(), Entry{
		OrganizationID: uuid.New(),
		Action:         audit.ActionUpdate,
		EntityType:     "payment_order",
		EntityID:       "order-1",
	})

	require.NotNil(t, captured)
	assert.Nil(t, captured.ActorID)
}

func TestRecord_AppendFailureIsSwallowed(t *testing.T) {
	repo := new(MockAuditRepository)
	recorder := NewRecorder(repo, nil)

	repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	// Must not panic or propagate; the audited operation already committed
	recorder.Record(context.Background(), Entry{
		OrganizationID: uuid.New(),
		Action:         audit.ActionCreate,
		EntityType:     "organization",
		EntityID:       "org-1",
	})

	repo.AssertExpectations(t)
}

func TestRecord_InvalidEntryIsRejectedWithoutAppend(t *testing.T) {
	repo := new(MockAuditRepository)
	recorder := NewRecorder(repo, nil)

	recorder.Record(context.Background(), Entry{
		OrganizationID: uuid.Nil,
		Action:         audit.ActionCreate,
		EntityType:     "organization",
		EntityID:       "org-1",
	})

	repo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestList_PassesFilterThrough(t *testing.T) {
	repo := new(MockAuditRepository)
	recorder := NewRecorder(repo, nil)
	orgID := uuid.New()
	filter := audit.Filter{EntityType: "payment_order", Limit: 10}

	repo.On("FindByOrganization", mock.Anything, orgID, filter).Return([]audit.Record{}, nil)

	records, err := recorder.List(context.Background(), orgID, filter)

	require.NoError(t, err)
	assert.Empty(t, records)
	repo.AssertExpectations(t)
}
