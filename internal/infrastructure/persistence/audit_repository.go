package persistence

import (
	"context"

	"github.com/biashara/backend/internal/domain/audit"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditRepository implements audit.Repository using GORM. Records are
// append-only: there is deliberately no update or delete path.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append inserts a single audit record
func (r *GormAuditRepository) Append(ctx context.Context, record *audit.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByOrganization lists audit records for an organization, newest first
func (r *GormAuditRepository) FindByOrganization(ctx context.Context, orgID uuid.UUID, filter audit.Filter) ([]audit.Record, error) {
	query := r.db.WithContext(ctx).
		Model(&audit.Record{}).
		Where("organization_id = ?", orgID)

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var records []audit.Record
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Ensure GormAuditRepository implements audit.Repository
var _ audit.Repository = (*GormAuditRepository)(nil)
