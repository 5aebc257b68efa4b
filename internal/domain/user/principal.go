package user

import (
	"github.com/google/uuid"
)

// Principal is the authenticated caller as issued by the auth collaborator.
type Principal struct {
	ID       uuid.UUID
	Role     Role
	TeamName *string
}

func NewPrincipal(id uuid.UUID, role Role, teamName *string) Principal {
	return Principal{ID: id, Role: role, TeamName: teamName}
}

// CanManage reports whether the principal may mutate a resource owned by ownerID.
func (p Principal) CanManage(ownerID uuid.UUID) bool {
	return p.Role.IsAdministrative() || p.ID == ownerID
}
