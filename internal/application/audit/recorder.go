package audit

import (
	"context"

	"github.com/biashara/backend/internal/domain/audit"
	"github.com/biashara/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry describes a completed mutation to be audited. ActorID is nil for
// system actions such as webhook reconciliation.
type Entry struct {
	OrganizationID uuid.UUID
	ActorID        *uuid.UUID
	Action         audit.Action
	EntityType     string
	EntityID       string
	OldValues      map[string]any
	NewValues      map[string]any
	ClientIP       string
	UserAgent      string
}

// Recorder writes audit records best-effort. Record never returns an error:
// the audited operation has already committed, so a recording failure is
// logged and swallowed rather than surfaced to the caller. A crash between
// the commit and the append loses the record; that gap is accepted.
type Recorder struct {
	repo   audit.Repository
	logger *zap.Logger
}

// NewRecorder creates a new audit recorder
func NewRecorder(repo audit.Repository, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{repo: repo, logger: log}
}

// Record appends one audit record for a completed operation
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	record, err := audit.NewRecord(
		entry.OrganizationID,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.OldValues,
		entry.NewValues,
	)
	if err != nil {
		logger.WithLogger(ctx, r.logger).Warn("audit record rejected",
			zap.String("entity_type", entry.EntityType),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err),
		)
		return
	}

	record.WithRequestMeta(entry.ClientIP, entry.UserAgent)

	if err := r.repo.Append(ctx, record); err != nil {
		logger.WithLogger(ctx, r.logger).Error("audit record append failed",
			zap.String("entity_type", entry.EntityType),
			zap.String("entity_id", entry.EntityID),
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
	}
}

// List returns audit records for an organization, newest first
func (r *Recorder) List(ctx context.Context, orgID uuid.UUID, filter audit.Filter) ([]audit.Record, error) {
	return r.repo.FindByOrganization(ctx, orgID, filter)
}
