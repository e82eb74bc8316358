package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/biashara/backend/internal/domain/identity"
	"github.com/biashara/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessContext identifies the authorized actor once a check allows. Handlers
// read it instead of re-deriving identity from the session.
type AccessContext struct {
	OrgID    uuid.UUID
	MemberID uuid.UUID
	Role     identity.Role
}

// ModuleCheck is the outcome of a module access check: the decision plus the
// actor context when allowed
type ModuleCheck struct {
	Decision identity.ModuleDecision
	Context  *AccessContext
}

// AccessService evaluates module and capability access for a session user
// within a resolved organization. The organization and member rows are read
// in one pass into a snapshot before evaluation, so a concurrent permission
// change cannot split the verdict.
type AccessService struct {
	orgRepo    identity.OrganizationRepository
	memberRepo identity.MemberRepository
	logger     *zap.Logger
}

// NewAccessService creates a new AccessService
func NewAccessService(
	orgRepo identity.OrganizationRepository,
	memberRepo identity.MemberRepository,
	log *zap.Logger,
) *AccessService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccessService{
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
		logger:     log,
	}
}

// CheckModule evaluates whether the external user may act in the given module
// of the organization
func (s *AccessService) CheckModule(ctx context.Context, orgID uuid.UUID, externalUserID string, module identity.Module) (*ModuleCheck, error) {
	snapshot, member, err := s.loadSnapshot(ctx, orgID, externalUserID)
	if err != nil {
		return nil, err
	}

	decision := identity.EvaluateModule(snapshot, module)
	check := &ModuleCheck{Decision: decision}
	if decision.Allowed {
		check.Context = &AccessContext{
			OrgID:    orgID,
			MemberID: member.ID,
			Role:     member.Role,
		}
	}
	return check, nil
}

// CheckCapability evaluates whether the external user holds a fine-grained
// capability within the organization
func (s *AccessService) CheckCapability(ctx context.Context, orgID uuid.UUID, externalUserID string, capability identity.Capability) (bool, *AccessContext, error) {
	snapshot, member, err := s.loadSnapshot(ctx, orgID, externalUserID)
	if err != nil {
		return false, nil, err
	}

	if !identity.EvaluateCapability(snapshot, capability) {
		return false, nil, nil
	}
	return true, &AccessContext{
		OrgID:    orgID,
		MemberID: member.ID,
		Role:     member.Role,
	}, nil
}

// Snapshot returns the raw access snapshot for an external user, for callers
// that evaluate several modules against one consistent view
func (s *AccessService) Snapshot(ctx context.Context, orgID uuid.UUID, externalUserID string) (identity.AccessSnapshot, error) {
	snapshot, _, err := s.loadSnapshot(ctx, orgID, externalUserID)
	return snapshot, err
}

// loadSnapshot reads the organization and member rows once and folds them
// into an AccessSnapshot. The member pointer is nil when no membership
// record exists.
func (s *AccessService) loadSnapshot(ctx context.Context, orgID uuid.UUID, externalUserID string) (identity.AccessSnapshot, *identity.Member, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return identity.AccessSnapshot{}, nil, shared.ErrNotFound
		}
		return identity.AccessSnapshot{}, nil, fmt.Errorf("failed to load organization: %w", err)
	}

	member, err := s.memberRepo.FindByExternalUserID(ctx, orgID, externalUserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return identity.SnapshotFor(org, nil), nil, nil
		}
		return identity.AccessSnapshot{}, nil, fmt.Errorf("failed to load member: %w", err)
	}

	return identity.SnapshotFor(org, member), member, nil
}
