package user

import "canyon-booking/internal/pkg/errs"

var ErrInvalidRole = errs.Class("invalid role", errs.ErrValidation)

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleLeader     Role = "leader"
	RoleGuide      Role = "guide"
	RoleEmployee   Role = "employee"
	RoleTrainee    Role = "trainee"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleLeader, RoleGuide, RoleEmployee, RoleTrainee:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

// IsAdministrative reports roles allowed to act on resources owned by other guides.
func (r Role) IsAdministrative() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleLeader:
		return true
	default:
		return false
	}
}

func (r Role) CanCreateSessions() bool {
	return r.IsValid() && r != RoleTrainee
}

func (r Role) CanHardDelete() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}
