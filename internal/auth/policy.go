package auth

import (
	"github.com/storelink/products-api/internal/apperr"
	"github.com/storelink/products-api/internal/model"
)

// RequireElevated gates the write actions: only super-admins and admins may
// create, patch or delete products.
func RequireElevated(s Subject) error {
	if !s.IsElevated() {
		return apperr.NotAuthorized
	}
	return nil
}

// CanCreateAt checks that a non-super caller only targets its own locations.
func CanCreateAt(s Subject, locationID string) error {
	if s.IsSuperAdmin() || s.InLocation(locationID) {
		return nil
	}
	return apperr.CreateLocationDenied
}

// CanModify checks write access to an existing product. A location mismatch
// on a write is an authorization failure, not a not-found.
func CanModify(s Subject, p *model.Product) error {
	if s.IsSuperAdmin() || s.InLocation(p.LocationID) {
		return nil
	}
	return apperr.ModifyDenied
}

// CanMoveTo checks that a patch does not move a product outside the
// caller's location set.
func CanMoveTo(s Subject, locationID string) error {
	if s.IsSuperAdmin() || s.InLocation(locationID) {
		return nil
	}
	return apperr.MoveLocationDenied
}

// CanView reports read visibility of a single product. Disabled products
// are visible only to super-admins and to location-scoped staff of the
// product's location; to everyone else the product does not exist.
func CanView(s Subject, p *model.Product) bool {
	if p.Status == model.StatusEnabled {
		return true
	}
	if s.IsSuperAdmin() {
		return true
	}
	return s.IsLocationScoped() && s.InLocation(p.LocationID)
}
