package identity

import (
	"time"

	"github.com/biashara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Member is a user's authorization record within one organization: external
// user id, role and the per-member allowed module set. Members are soft
// deleted; a soft-deleted member has zero effective permissions regardless
// of its role and module fields.
type Member struct {
	shared.OrgAggregateRoot
	// Uniqueness of (organization_id, external_user_id) is enforced by the
	// idx_members_org_user migration index.
	ExternalUserID string     `gorm:"type:varchar(100);not null;index"`
	Role           Role       `gorm:"type:varchar(30);not null;default:'employee'"`
	AllowedModules string     `gorm:"type:text;not null;default:'[]'"` // JSON array of module names
	DeletedAt      *time.Time `gorm:"index"`
	DeletedBy      *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Member) TableName() string {
	return "members"
}

// NewMember creates a member for an external user within an organization
func NewMember(orgID uuid.UUID, externalUserID string, role Role) (*Member, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	if externalUserID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_USER_ID", "External user ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	return &Member{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		ExternalUserID:   externalUserID,
		Role:             role,
		AllowedModules:   encodeModules(nil),
	}, nil
}

// Modules returns the decoded allowed module set
func (m *Member) Modules() []Module {
	return decodeModules(m.AllowedModules)
}

// ModuleAllowed reports whether a module is in the member's allowed set
func (m *Member) ModuleAllowed(module Module) bool {
	for _, allowed := range m.Modules() {
		if allowed == module {
			return true
		}
	}
	return false
}

// SetAllowedModules replaces the member's allowed module set
func (m *Member) SetAllowedModules(modules []Module) error {
	for _, module := range modules {
		if !module.IsValid() {
			return shared.NewDomainError("INVALID_MODULE", "Unknown module")
		}
	}
	m.AllowedModules = encodeModules(modules)
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// ChangeRole updates the member's role
func (m *Member) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}
	m.Role = role
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// Deactivate soft-deletes the member, recording who removed them
func (m *Member) Deactivate(deletedBy uuid.UUID) error {
	if m.IsDeleted() {
		return shared.NewDomainError("ALREADY_DELETED", "Member is already deactivated")
	}
	now := time.Now()
	m.DeletedAt = &now
	m.DeletedBy = &deletedBy
	m.UpdatedAt = now
	m.IncrementVersion()

	m.AddDomainEvent(NewMemberDeactivatedEvent(m))

	return nil
}

// IsDeleted reports whether the member has been soft-deleted
func (m *Member) IsDeleted() bool {
	return m.DeletedAt != nil
}

// IsAdmin reports whether the member carries the admin role
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}
