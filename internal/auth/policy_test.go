package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storelink/products-api/internal/apperr"
	"github.com/storelink/products-api/internal/model"
	"github.com/storelink/products-api/pkg/zerror"
)

var (
	superAdmin = Subject{Roles: []string{RoleSuperAdmin}, Authenticated: true}
	anonymous  = Subject{}
)

func admin(locations ...string) Subject {
	return Subject{Roles: []string{RoleAdmin}, Locations: locations, Authenticated: true}
}

func employee(locations ...string) Subject {
	return Subject{Roles: []string{RoleEmployee}, Locations: locations, Authenticated: true}
}

func TestRequireElevated(t *testing.T) {
	assert.NoError(t, RequireElevated(superAdmin))
	assert.NoError(t, RequireElevated(admin("loc-1")))

	err := RequireElevated(employee("loc-1"))
	assert.True(t, zerror.Is(err, apperr.NotAuthorized))

	err = RequireElevated(anonymous)
	assert.True(t, zerror.Is(err, apperr.NotAuthorized))
}

func TestCanCreateAt(t *testing.T) {
	assert.NoError(t, CanCreateAt(superAdmin, "loc-9"))
	assert.NoError(t, CanCreateAt(admin("loc-1"), "loc-1"))

	err := CanCreateAt(admin("loc-1"), "loc-2")
	assert.True(t, zerror.Is(err, apperr.CreateLocationDenied))
}

func TestCanModify(t *testing.T) {
	p := &model.Product{LocationID: "loc-1"}

	assert.NoError(t, CanModify(superAdmin, p))
	assert.NoError(t, CanModify(admin("loc-1"), p))

	err := CanModify(admin("loc-2"), p)
	assert.True(t, zerror.Is(err, apperr.ModifyDenied))
}

func TestCanMoveTo(t *testing.T) {
	assert.NoError(t, CanMoveTo(superAdmin, "loc-9"))
	assert.NoError(t, CanMoveTo(admin("loc-1", "loc-2"), "loc-2"))

	err := CanMoveTo(admin("loc-1"), "loc-2")
	assert.True(t, zerror.Is(err, apperr.MoveLocationDenied))
}

func TestCanView(t *testing.T) {
	enabled := &model.Product{LocationID: "loc-1", Status: model.StatusEnabled}
	disabled := &model.Product{LocationID: "loc-1", Status: model.StatusDisabled}

	t.Run("Should show enabled products to everyone", func(t *testing.T) {
		assert.True(t, CanView(anonymous, enabled))
		assert.True(t, CanView(employee("loc-2"), enabled))
	})

	t.Run("Should hide disabled products from customers", func(t *testing.T) {
		assert.False(t, CanView(anonymous, disabled))
	})

	t.Run("Should show disabled products to super-admins", func(t *testing.T) {
		assert.True(t, CanView(superAdmin, disabled))
	})

	t.Run("Should show disabled products only to staff of the location", func(t *testing.T) {
		assert.True(t, CanView(employee("loc-1"), disabled))
		assert.True(t, CanView(admin("loc-1"), disabled))
		assert.False(t, CanView(employee("loc-2"), disabled))
	})
}
