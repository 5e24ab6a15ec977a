package membership

import "github.com/google/uuid"

// Resolve determines the single applicable membership for a user in the
// given tenant.
//
// Precedence:
//  1. Technicians get a synthetic system membership for any tenant.
//  2. A membership list entry for the tenant is authoritative; the legacy
//     fields are not consulted even when they conflict.
//  3. The legacy company field is a fallback for accounts that were never
//     migrated; the membership is synthesized from the legacy role.
//
// Returns ErrNoMembership when neither representation grants access.
// Callers must treat that as "no access", not as a request failure.
func Resolve(u *User, tenantID uuid.UUID) (Membership, error) {
	if u == nil {
		return Membership{}, ErrNoMembership
	}

	if u.IsTechnician() {
		return Membership{TenantID: tenantID, Source: SourceSystem}, nil
	}

	for _, e := range u.Memberships {
		if e.TenantID == tenantID {
			return Membership{
				TenantID: e.TenantID,
				RoleID:   e.RoleID,
				Source:   SourceMembershipList,
			}, nil
		}
	}

	if u.LegacyCompanyID != nil && *u.LegacyCompanyID == tenantID {
		m := Membership{TenantID: tenantID, Source: SourceLegacy}
		if u.LegacyRoleID != nil {
			m.RoleID = *u.LegacyRoleID
		}
		return m, nil
	}

	return Membership{}, ErrNoMembership
}

// CanAccessTenant is the guard predicate evaluated by every tenant-scoped
// mutation before proceeding. It is true for technicians unconditionally
// and otherwise iff Resolve finds a membership for the tenant.
func CanAccessTenant(u *User, tenantID uuid.UUID) bool {
	_, err := Resolve(u, tenantID)
	return err == nil
}

// TenantIDs returns every tenant the user is a member of, membership list
// first, legacy company last when not already present. The order is stable
// for a given user document.
func TenantIDs(u *User) []uuid.UUID {
	if u == nil {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(u.Memberships)+1)
	seen := make(map[uuid.UUID]struct{}, len(u.Memberships)+1)
	for _, e := range u.Memberships {
		if _, ok := seen[e.TenantID]; ok {
			continue
		}
		seen[e.TenantID] = struct{}{}
		ids = append(ids, e.TenantID)
	}
	if u.LegacyCompanyID != nil {
		if _, ok := seen[*u.LegacyCompanyID]; !ok {
			ids = append(ids, *u.LegacyCompanyID)
		}
	}
	return ids
}
