package identity

import "strings"

// Capability is a fine-grained permission token in "area:action" form,
// e.g. "finance:write". Two superuser tokens exist: "read:all" satisfies any
// read capability, "write:all" satisfies any capability.
type Capability string

const (
	CapabilityReadAll  Capability = "read:all"
	CapabilityWriteAll Capability = "write:all"

	CapabilityFinanceRead    Capability = "finance:read"
	CapabilityFinanceWrite   Capability = "finance:write"
	CapabilityCRMRead        Capability = "crm:read"
	CapabilityCRMWrite       Capability = "crm:write"
	CapabilityHRRead         Capability = "hr:read"
	CapabilityHRWrite        Capability = "hr:write"
	CapabilityInventoryRead  Capability = "inventory:read"
	CapabilityInventoryWrite Capability = "inventory:write"
	CapabilitySalesRead      Capability = "sales:read"
	CapabilitySalesWrite     Capability = "sales:write"
	CapabilitySettingsWrite  Capability = "settings:write"
)

// String returns the string representation of the capability
func (c Capability) String() string {
	return string(c)
}

// IsRead reports whether the capability names a read-nature action.
// Anything that is not a read is treated as a write for superuser matching.
func (c Capability) IsRead() bool {
	idx := strings.LastIndex(string(c), ":")
	if idx < 0 {
		return false
	}
	return string(c)[idx+1:] == "read"
}

// Role is the fixed role enumeration assigned to a member within one
// organization.
type Role string

const (
	RoleAdmin            Role = "admin"
	RoleAccountant       Role = "accountant"
	RoleHRManager        Role = "hr_manager"
	RoleSalesManager     Role = "sales_manager"
	RoleInventoryManager Role = "inventory_manager"
	RoleEmployee         Role = "employee"
)

// IsValid returns true if the role is part of the fixed enumeration
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAccountant, RoleHRManager, RoleSalesManager, RoleInventoryManager, RoleEmployee:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// roleCapabilities is the static role -> capability grant table. It is fixed
// at compile time; per-member variation happens through allowed modules, not
// through this table.
var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapabilityReadAll,
		CapabilityWriteAll,
	},
	RoleAccountant: {
		CapabilityFinanceRead,
		CapabilityFinanceWrite,
		CapabilitySalesRead,
	},
	RoleHRManager: {
		CapabilityHRRead,
		CapabilityHRWrite,
	},
	RoleSalesManager: {
		CapabilitySalesRead,
		CapabilitySalesWrite,
		CapabilityCRMRead,
		CapabilityCRMWrite,
		CapabilityInventoryRead,
	},
	RoleInventoryManager: {
		CapabilityInventoryRead,
		CapabilityInventoryWrite,
	},
	RoleEmployee: {
		CapabilityCRMRead,
		CapabilitySalesRead,
	},
}

// Capabilities returns the static capability set granted to a role.
// The returned slice must not be mutated.
func (r Role) Capabilities() []Capability {
	return roleCapabilities[r]
}

// HasCapability reports whether the role's static capability set satisfies
// the requested capability. "write:all" satisfies any capability; "read:all"
// satisfies read-nature capabilities only.
func (r Role) HasCapability(requested Capability) bool {
	for _, c := range roleCapabilities[r] {
		if c == requested {
			return true
		}
		if c == CapabilityWriteAll {
			return true
		}
		if c == CapabilityReadAll && requested.IsRead() {
			return true
		}
	}
	return false
}
