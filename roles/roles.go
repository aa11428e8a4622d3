package roles

import (
	"context"
	"strings"

	"campus-popcorn-api/models"
)

// AdminLookup reports whether the admins table has a row for the user.
type AdminLookup interface {
	IsAdminRow(ctx context.Context, userID string) (bool, error)
}

// Strategy is one independent admin-role source. Strategies are pure
// functions of the user, the configured allowlist, and a store lookup.
type Strategy func(ctx context.Context, u *models.User, r *Resolver) bool

// Resolver evaluates the ordered strategies short-circuit and returns the
// first affirmative.
type Resolver struct {
	AdminEmails []string // lowercased
	Lookup      AdminLookup
	strategies  []Strategy
}

func NewResolver(adminEmails []string, lookup AdminLookup) *Resolver {
	return &Resolver{
		AdminEmails: adminEmails,
		Lookup:      lookup,
		strategies: []Strategy{
			byMetadataFlag,
			byRoleField,
			byEmailAllowlist,
			byAdminTable,
		},
	}
}

// Resolve returns the role for a user; nil users are unknown clients.
func (r *Resolver) Resolve(ctx context.Context, u *models.User) models.UserRole {
	if u == nil {
		return models.RoleClient
	}
	for _, s := range r.strategies {
		if s(ctx, u, r) {
			return models.RoleAdmin
		}
	}
	return models.RoleClient
}

func byMetadataFlag(ctx context.Context, u *models.User, r *Resolver) bool {
	return u.IsAdmin
}

func byRoleField(ctx context.Context, u *models.User, r *Resolver) bool {
	return strings.EqualFold(string(u.Role), string(models.RoleAdmin))
}

func byEmailAllowlist(ctx context.Context, u *models.User, r *Resolver) bool {
	email := strings.ToLower(u.Email)
	if email == "" {
		return false
	}
	for _, e := range r.AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

func byAdminTable(ctx context.Context, u *models.User, r *Resolver) bool {
	if r.Lookup == nil {
		return false
	}
	ok, err := r.Lookup.IsAdminRow(ctx, u.ID)
	if err != nil {
		return false // lookup failure falls through to client
	}
	return ok
}
