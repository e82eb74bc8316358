package persistence

import (
	"context"
	"errors"

	"github.com/biashara/backend/internal/domain/identity"
	"github.com/biashara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrganizationRepository implements OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by its ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	var org identity.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// FindByExternalID finds an organization by its identity-provider ID
func (r *GormOrganizationRepository) FindByExternalID(ctx context.Context, externalID string) (*identity.Organization, error) {
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External ID cannot be empty")
	}
	var org identity.Organization
	if err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&org).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

// Create inserts a new organization. When another request inserted the same
// external ID first, the unique index rejects this insert and the error is
// reported as shared.ErrAlreadyExists so the caller can re-read the winner.
func (r *GormOrganizationRepository) Create(ctx context.Context, org *identity.Organization) error {
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing organization
func (r *GormOrganizationRepository) Update(ctx context.Context, org *identity.Organization) error {
	result := r.db.WithContext(ctx).
		Model(&identity.Organization{}).
		Where("id = ? AND version = ?", org.ID, org.Version-1).
		Updates(map[string]interface{}{
			"name":                org.Name,
			"slug":                org.Slug,
			"enabled_modules":     org.EnabledModules,
			"onboarding_complete": org.OnboardingComplete,
			"version":             org.Version,
			"updated_at":          org.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormOrganizationRepository implements OrganizationRepository
var _ identity.OrganizationRepository = (*GormOrganizationRepository)(nil)
