package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/biashara/backend/internal/domain/identity"
	"github.com/biashara/backend/internal/domain/shared"
	"github.com/biashara/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ResolveInput carries the verified session identity into tenant resolution.
// Name and slug hints come from the identity provider's org claims and may be
// empty.
type ResolveInput struct {
	ExternalOrgID  string
	ExternalUserID string
	NameHint       string
	SlugHint       string
}

// Resolution is the outcome of tenant resolution: the durable organization,
// the caller's membership record if one exists, and whether this call
// created the organization.
type Resolution struct {
	Organization *identity.Organization
	Member       *identity.Member
	Created      bool
}

// OrganizationService resolves external identity-provider organizations to
// durable local organizations. Resolution is idempotent: any number of
// concurrent first contacts for the same external org converge on one row.
type OrganizationService struct {
	orgRepo        identity.OrganizationRepository
	memberRepo     identity.MemberRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(
	orgRepo identity.OrganizationRepository,
	memberRepo identity.MemberRepository,
	eventPublisher shared.EventPublisher,
	log *zap.Logger,
) *OrganizationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrganizationService{
		orgRepo:        orgRepo,
		memberRepo:     memberRepo,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

// ResolveOrCreate maps an external org ID to the local organization, creating
// it on first contact. The insert relies on the unique external-id index:
// when two requests race, one insert wins and the loser re-reads the winner's
// row, so both return the same organization.
//
// The first user to resolve a newly created organization is provisioned as
// its admin member. Later users of an existing organization get no implicit
// membership; they stay denied until an admin adds them.
func (s *OrganizationService) ResolveOrCreate(ctx context.Context, input ResolveInput) (*Resolution, error) {
	if input.ExternalOrgID == "" {
		return nil, shared.ErrUnauthenticated
	}
	if input.ExternalUserID == "" {
		return nil, shared.ErrUnauthenticated
	}

	org, created, err := s.resolveOrganization(ctx, input)
	if err != nil {
		return nil, err
	}

	member, err := s.resolveMember(ctx, org, input.ExternalUserID, created)
	if err != nil {
		return nil, err
	}

	if created {
		logger.WithLogger(ctx, s.logger).Info("organization created on first contact",
			zap.String("org_id", org.ID.String()),
			zap.String("external_org_id", org.ExternalID),
			zap.String("slug", org.Slug),
		)
	}

	return &Resolution{
		Organization: org,
		Member:       member,
		Created:      created,
	}, nil
}

// slugDedupeAttempts bounds how many suffixed slugs are tried when the
// insert keeps colliding on the slug index
const slugDedupeAttempts = 3

// resolveOrganization finds or race-safely creates the organization row.
// The organizations table carries two unique indexes, so a rejected insert
// has two possible causes: losing the first-contact race on the external id,
// or the derived slug belonging to an unrelated organization. The re-read by
// external id tells them apart; a slug collision retries with a de-duped slug
// instead of failing the tenant forever.
func (s *OrganizationService) resolveOrganization(ctx context.Context, input ResolveInput) (*identity.Organization, bool, error) {
	org, err := s.orgRepo.FindByExternalID(ctx, input.ExternalOrgID)
	if err == nil {
		return org, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up organization: %w", err)
	}

	candidate, err := identity.NewOrganization(input.ExternalOrgID, input.NameHint, input.SlugHint)
	if err != nil {
		return nil, false, err
	}

	for attempt := 0; attempt <= slugDedupeAttempts; attempt++ {
		err := s.orgRepo.Create(ctx, candidate)
		if err == nil {
			s.publishEvents(ctx, candidate)
			return candidate, true, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, false, fmt.Errorf("failed to create organization: %w", err)
		}

		existing, readErr := s.orgRepo.FindByExternalID(ctx, input.ExternalOrgID)
		if readErr == nil {
			// Lost the first-contact race; the winner's row is authoritative
			return existing, false, nil
		}
		if !errors.Is(readErr, shared.ErrNotFound) {
			return nil, false, fmt.Errorf("failed to re-read organization after insert race: %w", readErr)
		}

		logger.WithLogger(ctx, s.logger).Info("organization slug taken, retrying with de-duped slug",
			zap.String("external_org_id", input.ExternalOrgID),
			zap.String("slug", candidate.Slug),
		)
		candidate, err = identity.NewOrganization(input.ExternalOrgID, input.NameHint, identity.DedupeSlug(candidate.Slug))
		if err != nil {
			return nil, false, err
		}
	}

	return nil, false, fmt.Errorf("failed to create organization %q: slug collisions persisted", input.ExternalOrgID)
}

// resolveMember loads the caller's membership, provisioning the admin member
// for a just-created organization
func (s *OrganizationService) resolveMember(ctx context.Context, org *identity.Organization, externalUserID string, orgCreated bool) (*identity.Member, error) {
	member, err := s.memberRepo.FindByExternalUserID(ctx, org.ID, externalUserID)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}

	if !orgCreated {
		// Unknown user in an existing organization; membership is granted
		// explicitly, never implied by a valid session
		return nil, nil
	}

	admin, err := identity.NewMember(org.ID, externalUserID, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.memberRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.memberRepo.FindByExternalUserID(ctx, org.ID, externalUserID)
		}
		return nil, fmt.Errorf("failed to create admin member: %w", err)
	}

	return admin, nil
}

// publishEvents publishes and clears an aggregate's domain events best-effort
func (s *OrganizationService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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
