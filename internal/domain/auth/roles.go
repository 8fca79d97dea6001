package auth

// Role titles are the fixed organizational catalogue from the appraisal form.
// RoleDirectorGeneral is the top-level administrator.
const (
	RoleDirectorGeneral      = "Director-General"
	RoleDeputyDGManagement   = "Deputy Director – General, Management Services"
	RoleDeputyDGOperations   = "Deputy Director – General, Operations"
	RoleCorporateAffairsHead = "Corporate Affairs Head"
	RoleInternalAuditHead    = "Internal Audit Head"
	RoleLegalServicesHead    = "Legal Services Head"
	RoleHRDivisionHead       = "HR Management & Development Division Head"
	RoleFinanceDivisionHead  = "Finance Division Head"
	RoleAdminDivisionHead    = "Administration Division Head"
	RoleResearchDivisionHead = "Research, Innovation, Monitoring & Evaluation Division Head"
	RoleEduTechDivisionHead  = "EduTech Division Head"
	RoleInfraDivisionHead    = "Infrastructure Planning & Development Division Head"
	RoleApprenticeshipHead   = "Apprenticeship Division Head"
	RolePartnershipsHead     = "Partnerships, WEL & Inclusion Division Head"
	RoleTrainingQAHead       = "Training, Assessment & Quality Assurance Division Head"
	RoleRegionalDirector     = "Regional Director"
	RoleUnitHead             = "Unit Head"
	RoleStaffMember          = "Staff Member"
)

// Roles lists every valid role in catalogue order.
var Roles = []string{
	RoleDirectorGeneral,
	RoleDeputyDGManagement,
	RoleDeputyDGOperations,
	RoleCorporateAffairsHead,
	RoleInternalAuditHead,
	RoleLegalServicesHead,
	RoleHRDivisionHead,
	RoleFinanceDivisionHead,
	RoleAdminDivisionHead,
	RoleResearchDivisionHead,
	RoleEduTechDivisionHead,
	RoleInfraDivisionHead,
	RoleApprenticeshipHead,
	RolePartnershipsHead,
	RoleTrainingQAHead,
	RoleRegionalDirector,
	RoleUnitHead,
	RoleStaffMember,
}

func ValidRole(role string) bool {
	for _, candidate := range Roles {
		if candidate == role {
			return true
		}
	}
	return false
}

// ManagerRole reports whether the role may appraise direct reports.
// Every role except Staff Member sits somewhere in the management chain.
func ManagerRole(role string) bool {
	return ValidRole(role) && role != RoleStaffMember
}
