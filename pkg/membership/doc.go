// Package membership resolves which tenant membership applies to a user and
// gates tenant-scoped operations on it.
//
// A user account carries two membership representations at once: the legacy
// single-company fields from before the multi-tenant migration, and the
// canonical membership list introduced with it. The migration was not a
// big-bang rewrite, so both representations remain readable and neither may
// be dropped silently. Resolve is the single function that reconciles them
// with a documented precedence: membership list first, legacy fallback
// second, and a synthetic all-access membership for technician accounts
// before either.
//
// # Usage
//
//	m, err := membership.Resolve(user, tenantID)
//	if errors.Is(err, membership.ErrNoMembership) {
//		// no access, not a request failure
//	}
//
//	if !membership.CanAccessTenant(user, tenantID) {
//		// deny the mutation
//	}
//
// CanAccessTenant is the predicate every tenant-scoped mutation must check
// before touching state. A false result means access denied; it must never
// result in a silent partial operation.
//
// Resolution is a pure function of the user document and performs no I/O;
// role expansion is the job of the permission package.
package membership
