package tenant

import (
	"testing"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActor_CanAccess(t *testing.T) {
	own, other := uuid.New(), uuid.New()

	seller := Actor{UserID: uuid.New(), Role: model.RoleSeller, CompanyID: own}
	admin := Actor{UserID: uuid.New(), Role: model.RoleAdmin, CompanyID: own}
	super := Actor{UserID: uuid.New(), Role: model.RoleSuperAdmin, CompanyID: own}

	assert.True(t, seller.CanAccess(own))
	assert.False(t, seller.CanAccess(other))
	assert.False(t, admin.CanAccess(other))
	assert.True(t, super.CanAccess(other))
}

func TestActor_Owns_HidesForeignEntities(t *testing.T) {
	a := Actor{Role: model.RoleAdmin, CompanyID: uuid.New()}

	err := a.Owns(uuid.New(), "table")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrNotFound)
	assert.NoError(t, a.Owns(a.CompanyID, "table"))
}

func TestActor_ScopeCompany(t *testing.T) {
	own, other := uuid.New(), uuid.New()
	seller := Actor{Role: model.RoleSeller, CompanyID: own}
	super := Actor{Role: model.RoleSuperAdmin, CompanyID: own}

	got, err := seller.ScopeCompany(nil)
	require.NoError(t, err)
	assert.Equal(t, own, got)

	_, err = seller.ScopeCompany(&other)
	assert.ErrorIs(t, err, apierror.ErrForbidden)

	got, err = super.ScopeCompany(&other)
	require.NoError(t, err)
	assert.Equal(t, other, got)
}

func TestActor_Require(t *testing.T) {
	seller := Actor{Role: model.RoleSeller}
	admin := Actor{Role: model.RoleAdmin}
	unknown := Actor{Role: "GUEST"}

	assert.ErrorIs(t, seller.Require(model.RoleAdmin), apierror.ErrForbidden)
	assert.NoError(t, admin.Require(model.RoleAdmin))
	assert.NoError(t, admin.Require(model.RoleSeller))
	assert.ErrorIs(t, unknown.Require(model.RoleSeller), apierror.ErrForbidden)
	assert.True(t, ValidRole(model.RoleSuperAdmin))
	assert.False(t, ValidRole("GUEST"))
}
