package auth

const (
	PermAppraisalsRead   = "appraisals.read"
	PermAppraisalsWrite  = "appraisals.write"
	PermAppraisalsReview = "appraisals.review"
	PermAppraisalsAdmin  = "appraisals.admin"
	PermUsersRead        = "users.read"
	PermUsersWrite       = "users.write"
	PermAccessReview     = "access.review"
	PermReportsRead      = "reports.read"
	PermTransferAdmin    = "transfer.admin"
	PermAuditRead        = "audit.read"
	PermSystemAdmin      = "admin.system"
)

var DefaultPermissions = []string{
	PermAppraisalsRead,
	PermAppraisalsWrite,
	PermAppraisalsReview,
	PermAppraisalsAdmin,
	PermUsersRead,
	PermUsersWrite,
	PermAccessReview,
	PermReportsRead,
	PermTransferAdmin,
	PermAuditRead,
	PermSystemAdmin,
}

var staffPermissions = []string{
	PermAppraisalsRead,
	PermAppraisalsWrite,
	PermUsersRead,
	PermReportsRead,
}

var managerPermissions = []string{
	PermAppraisalsRead,
	PermAppraisalsWrite,
	PermAppraisalsReview,
	PermUsersRead,
	PermReportsRead,
}

// RolePermissions maps every role in the catalogue to its permission set.
// Only the Director-General holds the administrative permissions.
var RolePermissions = buildRolePermissions()

func buildRolePermissions() map[string][]string {
	perms := make(map[string][]string, len(Roles))
	for _, role := range Roles {
		switch {
		case role == RoleDirectorGeneral:
			perms[role] = append([]string(nil), DefaultPermissions...)
		case ManagerRole(role):
			perms[role] = append([]string(nil), managerPermissions...)
		default:
			perms[role] = append([]string(nil), staffPermissions...)
		}
	}
	return perms
}
