package identity

// Module is a coarse feature area gated independently at organization and
// member level.
type Module string

const (
	ModuleFinance   Module = "FINANCE"
	ModuleCRM       Module = "CRM"
	ModuleHR        Module = "HR"
	ModuleInventory Module = "INVENTORY"
	ModuleSales     Module = "SALES"
	ModuleSettings  Module = "SETTINGS"
)

// AllModules returns every known module token
func AllModules() []Module {
	return []Module{
		ModuleFinance,
		ModuleCRM,
		ModuleHR,
		ModuleInventory,
		ModuleSales,
		ModuleSettings,
	}
}

// IsValid returns true if the module token is known
func (m Module) IsValid() bool {
	switch m {
	case ModuleFinance, ModuleCRM, ModuleHR, ModuleInventory, ModuleSales, ModuleSettings:
		return true
	default:
		return false
	}
}

// String returns the string representation of the module
func (m Module) String() string {
	return string(m)
}
