package permission

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/gestora/backend/pkg/membership"
)

// Grant is the effective permission set for a user within one tenant.
// Both fields are sets; aggregation is order-independent.
type Grant struct {
	Codes      map[string]struct{}
	Categories map[string]struct{}
}

// HasCode reports whether the grant includes the permission code.
func (g Grant) HasCode(code string) bool {
	_, ok := g.Codes[code]
	return ok
}

// HasCategory reports whether the grant includes the category.
func (g Grant) HasCategory(category string) bool {
	_, ok := g.Categories[category]
	return ok
}

// defaultGrant returns the baseline pair guaranteed to every
// authenticated user.
func defaultGrant() Grant {
	return Grant{
		Codes:      map[string]struct{}{DefaultCode: {}},
		Categories: map[string]struct{}{DefaultCategory: {}},
	}
}

// Aggregator expands a user's resolved membership into an effective
// permission set. The catalog is loaded once at construction and treated
// as immutable; roles are tenant data and are read per call.
type Aggregator struct {
	catalog map[string]Permission
	roles   RoleStore
}

// NewAggregator creates an Aggregator, loading the permission catalog from
// the provided source.
func NewAggregator(ctx context.Context, catalog CatalogSource, roles RoleStore) (*Aggregator, error) {
	entries, err := catalog.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrCatalogLoad, err)
	}
	if entries == nil {
		entries = make(map[string]Permission)
	}

	return &Aggregator{catalog: entries, roles: roles}, nil
}

// EffectivePermissions computes the permission codes and categories a user
// holds within the tenant.
//
// When the user has no membership for the tenant, the resolved role does
// not exist, or the role carries no codes, the result is exactly the
// default pair (DefaultCode, DefaultCategory). Legacy permission objects
// stored directly on the user document predate the tenant system and are
// never consulted.
func (a *Aggregator) EffectivePermissions(ctx context.Context, u *membership.User, tenantID uuid.UUID) (Grant, error) {
	m, err := membership.Resolve(u, tenantID)
	if err != nil {
		if errors.Is(err, membership.ErrNoMembership) {
			return defaultGrant(), nil
		}
		return Grant{}, err
	}

	if m.RoleID == uuid.Nil {
		// System memberships and role-less legacy memberships have no
		// role to expand.
		return defaultGrant(), nil
	}

	role, err := a.roles.GetRole(ctx, m.RoleID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return defaultGrant(), nil
		}
		return Grant{}, err
	}

	if len(role.PermissionCodes) == 0 {
		return defaultGrant(), nil
	}

	grant := Grant{
		Codes:      make(map[string]struct{}, len(role.PermissionCodes)),
		Categories: make(map[string]struct{}),
	}
	for _, code := range role.PermissionCodes {
		if code == "" {
			continue
		}
		grant.Codes[code] = struct{}{}

		if p, ok := a.catalog[code]; ok && p.Category != "" {
			grant.Categories[p.Category] = struct{}{}
		}
		if category, ok := ImpliedCategory(code); ok {
			grant.Categories[category] = struct{}{}
		}
	}

	// Safety net: a role whose codes were all empty strings and implied
	// nothing still yields the baseline pair.
	if len(grant.Codes) == 0 && len(grant.Categories) == 0 {
		return defaultGrant(), nil
	}

	return grant, nil
}
