package identity

import (
	"context"
	"fmt"

	appaudit "github.com/biashara/backend/internal/application/audit"
	"github.com/biashara/backend/internal/domain/audit"
	"github.com/biashara/backend/internal/domain/identity"
	"github.com/biashara/backend/internal/domain/shared"
	"github.com/biashara/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MutationContext identifies who performs a settings mutation and the request
// metadata recorded with its audit trail
type MutationContext struct {
	Actor     AccessContext
	ClientIP  string
	UserAgent string
}

// SettingsService performs the administrative mutations of an organization:
// module toggles, member permissions and lifecycle, onboarding. Every
// mutation is written through the optimistic-version repositories and then
// recorded in the audit trail.
type SettingsService struct {
	orgRepo        identity.OrganizationRepository
	memberRepo     identity.MemberRepository
	recorder       *appaudit.Recorder
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSettingsService creates a new SettingsService. The recorder and
// publisher may be nil; mutations then run unaudited and unannounced.
func NewSettingsService(
	orgRepo identity.OrganizationRepository,
	memberRepo identity.MemberRepository,
	recorder *appaudit.Recorder,
	eventPublisher shared.EventPublisher,
	log *zap.Logger,
) *SettingsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsService{
		orgRepo:        orgRepo,
		memberRepo:     memberRepo,
		recorder:       recorder,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// ListMembers returns the active members of the actor's organization
func (s *SettingsService) ListMembers(ctx context.Context, mc MutationContext) ([]*identity.Member, error) {
	members, err := s.memberRepo.FindActiveByOrganization(ctx, mc.Actor.OrgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// SetMemberModules replaces a member's allowed module set
func (s *SettingsService) SetMemberModules(ctx context.Context, mc MutationContext, memberID uuid.UUID, modules []identity.Module) (*identity.Member, error) {
	member, err := s.loadMember(ctx, mc.Actor.OrgID, memberID)
	if err != nil {
		return nil, err
	}

	old := member.AllowedModules
	if err := member.SetAllowedModules(modules); err != nil {
		return nil, err
	}
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.record(ctx, mc, audit.ActionUpdate, "member", member.ID.String(),
		map[string]any{"allowed_modules": old},
		map[string]any{"allowed_modules": member.AllowedModules},
	)

	return member, nil
}

// ChangeMemberRole updates a member's role
func (s *SettingsService) ChangeMemberRole(ctx context.Context, mc MutationContext, memberID uuid.UUID, role identity.Role) (*identity.Member, error) {
	member, err := s.loadMember(ctx, mc.Actor.OrgID, memberID)
	if err != nil {
		return nil, err
	}

	old := member.Role
	if err := member.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	s.record(ctx, mc, audit.ActionUpdate, "member", member.ID.String(),
		map[string]any{"role": old.String()},
		map[string]any{"role": member.Role.String()},
	)

	return member, nil
}

// DeactivateMember soft-deletes a member. The actor cannot deactivate their
// own membership; that would lock the last admin out of the organization.
func (s *SettingsService) DeactivateMember(ctx context.Context, mc MutationContext, memberID uuid.UUID) error {
	if memberID == mc.Actor.MemberID {
		return shared.NewDomainError("INVALID_STATE", "Cannot deactivate your own membership")
	}

	member, err := s.loadMember(ctx, mc.Actor.OrgID, memberID)
	if err != nil {
		return err
	}

	if err := member.Deactivate(mc.Actor.MemberID); err != nil {
		return err
	}
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}

	s.record(ctx, mc, audit.ActionDelete, "member", member.ID.String(),
		map[string]any{"role": member.Role.String(), "external_user_id": member.ExternalUserID},
		nil,
	)
	s.publishEvents(ctx, member)

	logger.WithLogger(ctx, s.logger).Info("member deactivated",
		zap.String("member_id", member.ID.String()),
		zap.String("deactivated_by", mc.Actor.MemberID.String()),
	)

	return nil
}

// SetModuleEnabled enables or disables a module for the actor's organization
func (s *SettingsService) SetModuleEnabled(ctx context.Context, mc MutationContext, module identity.Module, enabled bool) (*identity.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, mc.Actor.OrgID)
	if err != nil {
		return nil, err
	}

	old := org.EnabledModules
	if enabled {
		if err := org.EnableModule(module); err != nil {
			return nil, err
		}
	} else {
		if !module.IsValid() {
			return nil, shared.NewDomainError("INVALID_MODULE", "Unknown module")
		}
		org.DisableModule(module)
	}
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	s.record(ctx, mc, audit.ActionUpdate, "organization", org.ID.String(),
		map[string]any{"enabled_modules": old},
		map[string]any{"enabled_modules": org.EnabledModules},
	)

	return org, nil
}

// RenameOrganization updates the organization's display name
func (s *SettingsService) RenameOrganization(ctx context.Context, mc MutationContext, name string) (*identity.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, mc.Actor.OrgID)
	if err != nil {
		return nil, err
	}

	old := org.Name
	if err := org.Rename(name); err != nil {
		return nil, err
	}
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	s.record(ctx, mc, audit.ActionUpdate, "organization", org.ID.String(),
		map[string]any{"name": old},
		map[string]any{"name": org.Name},
	)

	return org, nil
}

// CompleteOnboarding marks the actor's organization as fully set up.
// Idempotent; repeating it writes no update and no audit record.
func (s *SettingsService) CompleteOnboarding(ctx context.Context, mc MutationContext) (*identity.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, mc.Actor.OrgID)
	if err != nil {
		return nil, err
	}
	if org.OnboardingComplete {
		return org, nil
	}

	org.CompleteOnboarding()
	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	s.record(ctx, mc, audit.ActionUpdate, "organization", org.ID.String(),
		map[string]any{"onboarding_complete": false},
		map[string]any{"onboarding_complete": true},
	)

	return org, nil
}

// loadMember fetches a member and verifies it belongs to the actor's
// organization. A member of another tenant is indistinguishable from a
// missing one.
func (s *SettingsService) loadMember(ctx context.Context, orgID, memberID uuid.UUID) (*identity.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.OrganizationID != orgID {
		return nil, shared.ErrNotFound
	}
	return member, nil
}

// publishEvents publishes and clears an aggregate's domain events best-effort
func (s *SettingsService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
	aggregate.ClearDomainEvents()
}

// record appends the audit entry for a completed mutation
func (s *SettingsService) record(ctx context.Context, mc MutationContext, action audit.Action, entityType, entityID string, oldValues, newValues map[string]any) {
	if s.recorder == nil {
		return
	}
	actorID := mc.Actor.MemberID
	s.recorder.Record(ctx, appaudit.Entry{
		OrganizationID: mc.Actor.OrgID,
		ActorID:        &actorID,
		Action:         action,
		EntityType:     entityType,
		EntityID:       entityID,
		OldValues:      oldValues,
		NewValues:      newValues,
		ClientIP:       mc.ClientIP,
		UserAgent:      mc.UserAgent,
	})
}
