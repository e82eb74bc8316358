package identity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/biashara/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Organization represents a tenant in the multi-tenant system. It is created
// lazily on the first authorized action by any user of the external org and
// is never hard-deleted.
type Organization struct {
	shared.BaseAggregateRoot
	ExternalID         string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name               string `gorm:"type:varchar(200);not null"`
	Slug               string `gorm:"type:varchar(100);not null;uniqueIndex"`
	EnabledModules     string `gorm:"type:text;not null;default:'[]'"` // JSON array of module names
	OnboardingComplete bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Organization) TableName() string {
	return "organizations"
}

// defaultEnabledModules is granted to every newly resolved organization.
// Settings is always in the set so the administrative surface works before
// any module curation has happened.
var defaultEnabledModules = []Module{ModuleFinance, ModuleCRM, ModuleSales, ModuleSettings}

// NewOrganization creates an organization for an external identity-provider
// org identifier. Name and slug hints may be empty; a slug is derived from
// the external id when no hint is given.
func NewOrganization(externalID, name, slug string) (*Organization, error) {
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External organization ID cannot be empty")
	}
	if len(externalID) > 100 {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External organization ID cannot exceed 100 characters")
	}
	if name == "" {
		name = externalID
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Organization name cannot exceed 200 characters")
	}
	if slug == "" {
		slug = Slugify(externalID)
	} else {
		slug = Slugify(slug)
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_SLUG", "Organization slug cannot be empty")
	}

	org := &Organization{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalID:        externalID,
		Name:              name,
		Slug:              slug,
		EnabledModules:    encodeModules(defaultEnabledModules),
	}

	org.AddDomainEvent(NewOrganizationCreatedEvent(org))

	return org, nil
}

// Modules returns the decoded enabled module set
func (o *Organization) Modules() []Module {
	return decodeModules(o.EnabledModules)
}

// ModuleEnabled reports whether a module is enabled for this organization
func (o *Organization) ModuleEnabled(module Module) bool {
	for _, m := range o.Modules() {
		if m == module {
			return true
		}
	}
	return false
}

// EnableModule enables a module for the organization
func (o *Organization) EnableModule(module Module) error {
	if !module.IsValid() {
		return shared.NewDomainError("INVALID_MODULE", "Unknown module")
	}
	if o.ModuleEnabled(module) {
		return nil
	}
	o.EnabledModules = encodeModules(append(o.Modules(), module))
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// DisableModule disables a module for the organization
func (o *Organization) DisableModule(module Module) {
	modules := o.Modules()
	kept := modules[:0]
	for _, m := range modules {
		if m != module {
			kept = append(kept, m)
		}
	}
	o.EnabledModules = encodeModules(kept)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// CompleteOnboarding marks the organization as fully set up
func (o *Organization) CompleteOnboarding() {
	if o.OnboardingComplete {
		return
	}
	o.OnboardingComplete = true
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Rename updates the display name
func (o *Organization) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Organization name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Organization name cannot exceed 200 characters")
	}
	o.Name = name
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Slugify reduces a string to a URL-safe slug: lowercase letters, digits and
// hyphens, no leading/trailing or repeated hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// DedupeSlug returns the slug with a short random suffix. Slugs are unique
// across organizations, so an insert that collides on the slug of an
// unrelated organization retries with a de-duped one.
func DedupeSlug(slug string) string {
	if len(slug) > 91 {
		slug = slug[:91]
	}
	return slug + "-" + uuid.NewString()[:8]
}

func encodeModules(modules []Module) string {
	if modules == nil {
		modules = []Module{}
	}
	bytes, _ := json.Marshal(modules)
	return string(bytes)
}

func decodeModules(encoded string) []Module {
	if encoded == "" {
		return []Module{}
	}
	var modules []Module
	if err := json.Unmarshal([]byte(encoded), &modules); err != nil {
		return []Module{}
	}
	return modules
}
