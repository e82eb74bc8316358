package audit

import (
	"context"

	"github.com/biashara/backend/internal/domain/audit"
	"github.com/biashara/backend/internal/domain/identity"
	"github.com/biashara/backend/internal/domain/shared"
)

// TrailSubscriber writes audit records for mutations that happen outside an
// authenticated actor's request, currently first-contact organization
// creation. Mutations performed by an actor are audited directly by their
// service; subscribing to those events here would double-write the trail.
type TrailSubscriber struct {
	recorder *Recorder
}

// NewTrailSubscriber creates a new TrailSubscriber
func NewTrailSubscriber(recorder *Recorder) *TrailSubscriber {
	return &TrailSubscriber{recorder: recorder}
}

// EventTypes implements shared.EventHandler
func (s *TrailSubscriber) EventTypes() []string {
	return []string{identity.EventTypeOrganizationCreated}
}

// Handle implements shared.EventHandler
func (s *TrailSubscriber) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*identity.OrganizationCreatedEvent)
	if !ok {
		return nil
	}

	s.recorder.Record(ctx, Entry{
		OrganizationID: created.OrganizationID(),
		ActorID:        nil, // provisioned by the resolver, not an acting member
		Action:         audit.ActionCreate,
		EntityType:     "organization",
		EntityID:       created.AggregateID().String(),
		NewValues: map[string]any{
			"external_id": created.ExternalID,
			"name":        created.Name,
			"slug":        created.Slug,
		},
	})
	return nil
}

var _ shared.EventHandler = (*TrailSubscriber)(nil)
