// Package tenant carries the caller identity through every service call and
// decides whether that caller may touch a given company's data.
package tenant

import (
	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated caller: who they are, what they may do and which
// company they belong to. It is built from JWT claims by the HTTP layer and
// passed explicitly into services.
type Actor struct {
	UserID    uuid.UUID
	Role      string
	CompanyID uuid.UUID
}

var roleRank = map[string]int{
	model.RoleSeller:     1,
	model.RoleAdmin:      2,
	model.RoleSuperAdmin: 3,
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// IsSuperAdmin reports whether the actor may cross company boundaries.
func (a Actor) IsSuperAdmin() bool { return a.Role == model.RoleSuperAdmin }

// AtLeast reports whether the actor's role ranks at or above role.
func (a Actor) AtLeast(role string) bool {
	return roleRank[a.Role] >= roleRank[role] && roleRank[a.Role] > 0
}

// CanAccess reports whether the actor may read or write data of companyID.
func (a Actor) CanAccess(companyID uuid.UUID) bool {
	return a.IsSuperAdmin() || a.CompanyID == companyID
}

// Owns checks an entity that was looked up by ID. Entities of another company
// are reported as not found so their existence is not disclosed.
func (a Actor) Owns(companyID uuid.UUID, entity string) error {
	if !a.CanAccess(companyID) {
		return apierror.NotFound(entity)
	}
	return nil
}

// ScopeCompany resolves the company an operation acts on. A nil request means
// the actor's own company. An explicit request for another company is
// forbidden unless the actor is SUPERADMIN.
func (a Actor) ScopeCompany(requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil || *requested == uuid.Nil {
		return a.CompanyID, nil
	}
	if !a.CanAccess(*requested) {
		return uuid.Nil, apierror.Forbiddenf("company %s is outside your scope", *requested)
	}
	return *requested, nil
}

// Require fails with ForbiddenError unless the actor holds at least role.
func (a Actor) Require(role string) error {
	if !a.AtLeast(role) {
		return apierror.Forbiddenf("role %s required", role)
	}
	return nil
}
