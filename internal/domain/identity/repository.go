package identity

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository defines the interface for organization persistence
type OrganizationRepository interface {
	// FindByID finds an organization by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)

	// FindByExternalID finds an organization by its external identity-provider ID
	FindByExternalID(ctx context.Context, externalID string) (*Organization, error)

	// Create inserts a new organization. Returns shared.ErrAlreadyExists when
	// the unique external-id constraint is violated, so callers can resolve
	// concurrent first-contact races by re-reading.
	Create(ctx context.Context, org *Organization) error

	// Update updates an existing organization
	Update(ctx context.Context, org *Organization) error
}

// MemberRepository defines the interface for member persistence
type MemberRepository interface {
	// FindByID finds a member by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)

	// FindByExternalUserID finds the member record for an external user within
	// an organization. Soft-deleted rows are included; authorization decisions
	// filter through Member.IsDeleted at evaluation time.
	FindByExternalUserID(ctx context.Context, orgID uuid.UUID, externalUserID string) (*Member, error)

	// FindActiveByOrganization lists non-deleted members of an organization
	FindActiveByOrganization(ctx context.Context, orgID uuid.UUID) ([]*Member, error)

	// Create inserts a new member
	Create(ctx context.Context, member *Member) error

	// Update updates an existing member
	Update(ctx context.Context, member *Member) error
}
