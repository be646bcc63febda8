package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts
// and of the workflow transition tables.
const (
	RoleRequester          = "requester"
	RoleVendorManager      = "vendor_manager"
	RoleProcurementOfficer = "procurement_officer"
	RoleComplianceOfficer  = "compliance_officer"
	RoleFinanceOfficer     = "finance_officer"
	RoleHeadOfProcurement  = "head_of_procurement"
	RoleSuperAdmin         = "super_admin"
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

// Known reports whether a role name is one this service issues.
func Known(role string) bool {
	switch role {
	case RoleRequester, RoleVendorManager, RoleProcurementOfficer,
		RoleComplianceOfficer, RoleFinanceOfficer, RoleHeadOfProcurement,
		RoleSuperAdmin:
		return true
	default:
		return false
	}
}
