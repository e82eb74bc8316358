package persistence

import (
	"context"
	"errors"

	"github.com/biashara/backend/internal/domain/identity"
	"github.com/biashara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMemberRepository implements MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// FindByID finds a member by its ID
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Member, error) {
	var member identity.Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// FindByExternalUserID finds a member by the identity-provider user ID within
// an organization. Soft-deleted members are included so callers can tell a
// deactivated member apart from one that never existed.
func (r *GormMemberRepository) FindByExternalUserID(ctx context.Context, orgID uuid.UUID, externalUserID string) (*identity.Member, error) {
	if externalUserID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_USER_ID", "External user ID cannot be empty")
	}
	var member identity.Member
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND external_user_id = ?", orgID, externalUserID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// FindActiveByOrganization finds all non-deleted members of an organization
func (r *GormMemberRepository) FindActiveByOrganization(ctx context.Context, orgID uuid.UUID) ([]*identity.Member, error) {
	var members []*identity.Member
	if err := r.db.WithContext(ctx).
		Where("organization_id = ? AND deleted_at IS NULL", orgID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Create inserts a new member. A concurrent insert of the same
// (organization, external user) pair is reported as shared.ErrAlreadyExists.
func (r *GormMemberRepository) Create(ctx context.Context, member *identity.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing member
func (r *GormMemberRepository) Update(ctx context.Context, member *identity.Member) error {
	result := r.db.WithContext(ctx).
		Model(&identity.Member{}).
		Where("id = ? AND version = ?", member.ID, member.Version-1).
		Updates(map[string]interface{}{
			"role":            member.Role,
			"allowed_modules": member.AllowedModules,
			"deleted_at":      member.DeletedAt,
			"deleted_by":      member.DeletedBy,
			"version":         member.Version,
			"updated_at":      member.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormMemberRepository implements MemberRepository
var _ identity.MemberRepository = (*GormMemberRepository)(nil)
