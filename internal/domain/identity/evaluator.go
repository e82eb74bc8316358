package identity

// DenyReason classifies why a module decision denied access. The reasons are
// for logs and the onboarding flow only; the denied party always receives the
// same uniform redirect.
type DenyReason string

const (
	DenyReasonNone           DenyReason = ""
	DenyReasonNoSession      DenyReason = "no_session"
	DenyReasonNoMember       DenyReason = "no_member"
	DenyReasonMemberDeleted  DenyReason = "member_deleted"
	DenyReasonModuleDisabled DenyReason = "module_disabled"
	DenyReasonNotGranted     DenyReason = "not_granted"
	DenyReasonPendingSetup   DenyReason = "pending_setup"
)

// ModuleDecision is the outcome of a module access evaluation. The calling
// layer decides how to react (HTTP redirect, JSON rejection, CLI exit code).
type ModuleDecision struct {
	Allowed bool
	Reason  DenyReason
}

// AccessSnapshot is a single consistent view of everything the evaluator
// needs: the organization's enabled modules and the member's authorization
// fields, read in one pass before evaluation so a concurrent permission
// change cannot produce a split verdict.
type AccessSnapshot struct {
	EnabledModules []Module
	Role           Role
	AllowedModules []Module
	MemberDeleted  bool
	MemberExists   bool
}

// SnapshotFor builds an AccessSnapshot from an organization and an optional
// member row. member may be nil when no membership record exists.
func SnapshotFor(org *Organization, member *Member) AccessSnapshot {
	snapshot := AccessSnapshot{
		EnabledModules: org.Modules(),
	}
	if member != nil {
		snapshot.MemberExists = true
		snapshot.MemberDeleted = member.IsDeleted()
		snapshot.Role = member.Role
		snapshot.AllowedModules = member.Modules()
	}
	return snapshot
}

// EvaluateModule decides module access from a snapshot. Pure and
// deterministic: same snapshot, same verdict, no I/O.
//
// Allow iff the module is enabled for the organization AND the member is
// either an admin or carries the module in their allowed set. Admins bypass
// the member-level set only, never the organization-level toggle.
func EvaluateModule(snapshot AccessSnapshot, module Module) ModuleDecision {
	if !snapshot.MemberExists {
		return ModuleDecision{Reason: DenyReasonNoMember}
	}
	if snapshot.MemberDeleted {
		return ModuleDecision{Reason: DenyReasonMemberDeleted}
	}
	if !containsModule(snapshot.EnabledModules, module) {
		return ModuleDecision{Reason: DenyReasonModuleDisabled}
	}
	if snapshot.Role == RoleAdmin {
		return ModuleDecision{Allowed: true}
	}
	if len(snapshot.AllowedModules) == 0 {
		return ModuleDecision{Reason: DenyReasonPendingSetup}
	}
	if !containsModule(snapshot.AllowedModules, module) {
		return ModuleDecision{Reason: DenyReasonNotGranted}
	}
	return ModuleDecision{Allowed: true}
}

// EvaluateCapability decides a fine-grained capability from a snapshot. A
// missing or soft-deleted member always denies.
func EvaluateCapability(snapshot AccessSnapshot, capability Capability) bool {
	if !snapshot.MemberExists || snapshot.MemberDeleted {
		return false
	}
	return snapshot.Role.HasCapability(capability)
}

func containsModule(modules []Module, module Module) bool {
	for _, m := range modules {
		if m == module {
			return true
		}
	}
	return false
}
