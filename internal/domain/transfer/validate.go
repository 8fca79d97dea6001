package transfer

import (
	"errors"
	"fmt"

	"appraisal/internal/domain/access"
	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/auth"
)

var ErrInvalidSnapshot = errors.New("invalid snapshot")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
}

// ValidateSnapshot checks referential integrity of an import before any
// row is written. An import either applies completely or not at all.
func ValidateSnapshot(s *Snapshot) error {
	users := make(map[string]*UserRecord, len(s.Users))
	staffIDs := make(map[string]string, len(s.Users))
	emails := make(map[string]string, len(s.Users))

	for i := range s.Users {
		u := &s.Users[i]
		if u.ID == "" {
			return invalid("user %d has no id", i)
		}
		if u.Name == "" {
			return invalid("user %s has no name", u.ID)
		}
		if u.StaffID == "" {
			return invalid("user %s has no staff id", u.ID)
		}
		if !auth.ValidRole(u.Role) {
			return invalid("user %s has unknown role %q", u.ID, u.Role)
		}
		if _, dup := users[u.ID]; dup {
			return invalid("duplicate user id %s", u.ID)
		}
		if prev, dup := staffIDs[u.StaffID]; dup {
			return invalid("staff id %s shared by users %s and %s", u.StaffID, prev, u.ID)
		}
		if u.Email != "" {
			if prev, dup := emails[u.Email]; dup {
				return invalid("email %s shared by users %s and %s", u.Email, prev, u.ID)
			}
			emails[u.Email] = u.ID
		}
		users[u.ID] = u
		staffIDs[u.StaffID] = u.ID
	}

	for _, u := range s.Users {
		if u.ManagerID == "" {
			continue
		}
		if u.ManagerID == u.ID {
			return invalid("user %s is their own manager", u.ID)
		}
		if _, ok := users[u.ManagerID]; !ok {
			return invalid("user %s references unknown manager %s", u.ID, u.ManagerID)
		}
	}
	if err := checkManagerCycles(s.Users); err != nil {
		return err
	}

	if err := checkHierarchy(s); err != nil {
		return err
	}

	appraisalIDs := make(map[string]bool, len(s.Appraisals))
	for _, a := range s.Appraisals {
		if a.ID == "" {
			return invalid("appraisal without id")
		}
		if appraisalIDs[a.ID] {
			return invalid("duplicate appraisal id %s", a.ID)
		}
		appraisalIDs[a.ID] = true
		if !appraisal.ValidStatus(a.Status) {
			return invalid("appraisal %s has unknown status %q", a.ID, a.Status)
		}
		if a.CreatedBy != appraisal.CreatedByAppraisee && a.CreatedBy != appraisal.CreatedByAppraiser {
			return invalid("appraisal %s has unknown creator kind %q", a.ID, a.CreatedBy)
		}
		if _, ok := users[a.EmployeeID]; !ok {
			return invalid("appraisal %s references unknown employee %s", a.ID, a.EmployeeID)
		}
		if _, ok := users[a.AppraiserID]; !ok {
			return invalid("appraisal %s references unknown appraiser %s", a.ID, a.AppraiserID)
		}
		if a.PeriodEnd.Before(a.PeriodStart) {
			return invalid("appraisal %s period ends before it starts", a.ID)
		}
		if a.Version < 1 {
			return invalid("appraisal %s has version %d", a.ID, a.Version)
		}
	}

	requestIDs := make(map[string]bool, len(s.AccessRequests))
	for _, r := range s.AccessRequests {
		if r.ID == "" {
			return invalid("access request without id")
		}
		if requestIDs[r.ID] {
			return invalid("duplicate access request id %s", r.ID)
		}
		requestIDs[r.ID] = true
		switch r.Status {
		case access.StatusPending, access.StatusApproved, access.StatusRejected:
		default:
			return invalid("access request %s has unknown status %q", r.ID, r.Status)
		}
		if !auth.ValidRole(r.Role) {
			return invalid("access request %s has unknown role %q", r.ID, r.Role)
		}
	}

	return nil
}

func checkManagerCycles(users []UserRecord) error {
	manager := make(map[string]string, len(users))
	for _, u := range users {
		manager[u.ID] = u.ManagerID
	}
	for _, u := range users {
		seen := map[string]bool{u.ID: true}
		for cur := u.ManagerID; cur != ""; cur = manager[cur] {
			if seen[cur] {
				return invalid("manager chain of user %s forms a cycle", u.ID)
			}
			seen[cur] = true
		}
	}
	return nil
}

// checkHierarchy confirms the exported adjacency map agrees with the
// manager field on each user. The map is informational on export and
// must not contradict the authoritative edges on import.
func checkHierarchy(s *Snapshot) error {
	if s.OrgHierarchy == nil {
		return nil
	}
	byManager := map[string]map[string]bool{}
	for _, u := range s.Users {
		if u.ManagerID == "" {
			continue
		}
		if byManager[u.ManagerID] == nil {
			byManager[u.ManagerID] = map[string]bool{}
		}
		byManager[u.ManagerID][u.ID] = true
	}
	for managerID, reports := range s.OrgHierarchy {
		for _, reportID := range reports {
			if !byManager[managerID][reportID] {
				return invalid("orgHierarchy lists %s under %s but the user records disagree", reportID, managerID)
			}
		}
	}
	return nil
}
