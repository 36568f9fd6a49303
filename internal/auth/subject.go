package auth

import (
	"context"
	"slices"
)

// Role claim values recognized by the API. Anything else is treated as an
// anonymous customer.
const (
	RoleSuperAdmin = "user.roles.super"
	RoleAdmin      = "user.roles.admin"
	RoleEmployee   = "user.roles.employee"
)

// Subject is the request-scoped caller identity extracted from the bearer
// token. The zero value is an anonymous customer.
type Subject struct {
	UserID        string
	Roles         []string
	Locations     []string
	Authenticated bool
}

func (s Subject) HasRole(role string) bool {
	return slices.Contains(s.Roles, role)
}

func (s Subject) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if s.HasRole(role) {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether the caller can see and touch everything,
// soft-deleted records included.
func (s Subject) IsSuperAdmin() bool {
	return s.HasRole(RoleSuperAdmin)
}

// IsElevated reports whether the caller may create and mutate products.
func (s Subject) IsElevated() bool {
	return s.HasAnyRole(RoleSuperAdmin, RoleAdmin)
}

// IsLocationScoped reports whether the caller's reach is bounded by a
// location set rather than global.
func (s Subject) IsLocationScoped() bool {
	return s.HasAnyRole(RoleAdmin, RoleEmployee)
}

// InLocation reports membership of the given location in the caller's
// location set.
func (s Subject) InLocation(locationID string) bool {
	return slices.Contains(s.Locations, locationID)
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the subject.
func NewContext(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the subject from ctx. A request that never passed
// the auth middleware yields the anonymous subject.
func FromContext(ctx context.Context) Subject {
	s, _ := ctx.Value(ctxKey{}).(Subject)
	return s
}
