package identity

import (
	"github.com/biashara/backend/internal/domain/shared"
)

// Event types for the identity domain
const (
	EventTypeOrganizationCreated = "identity.organization.created"
	EventTypeMemberDeactivated   = "identity.member.deactivated"
)

// OrganizationCreatedEvent is published when an organization is first
// resolved from an external identity session
type OrganizationCreatedEvent struct {
	shared.BaseDomainEvent
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
}

// NewOrganizationCreatedEvent creates an OrganizationCreatedEvent
func NewOrganizationCreatedEvent(org *Organization) *OrganizationCreatedEvent {
	return &OrganizationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrganizationCreated, "Organization", org.ID, org.ID),
		ExternalID:      org.ExternalID,
		Name:            org.Name,
		Slug:            org.Slug,
	}
}

// MemberDeactivatedEvent is published when a member is soft-deleted
type MemberDeactivatedEvent struct {
	shared.BaseDomainEvent
	ExternalUserID string `json:"external_user_id"`
	Role           Role   `json:"role"`
}

// NewMemberDeactivatedEvent creates a MemberDeactivatedEvent
func NewMemberDeactivatedEvent(member *Member) *MemberDeactivatedEvent {
	return &MemberDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMemberDeactivated, "Member", member.ID, member.OrganizationID),
		ExternalUserID:  member.ExternalUserID,
		Role:            member.Role,
	}
}
