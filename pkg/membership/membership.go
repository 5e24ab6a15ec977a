package membership

import (
	"time"

	"github.com/google/uuid"
)

// SystemRole is a global, tenant-independent role tag on a user account.
type SystemRole string

const (
	// SystemRoleUser is the default system role with no special privileges.
	SystemRoleUser SystemRole = "user"

	// SystemRoleTechnician bypasses all tenant-scoped access checks.
	// Technicians are internal operators, not tenant members.
	SystemRoleTechnician SystemRole = "technician"
)

// Source identifies which membership representation produced a resolved
// membership. Two representations coexist after the multi-tenant migration:
// the membership list is canonical, the legacy single-company fields remain
// readable for accounts that were never migrated.
type Source string

const (
	// SourceMembershipList means the membership came from the user's
	// multi-tenant membership list (the canonical representation).
	SourceMembershipList Source = "membership_list"

	// SourceLegacy means the membership was synthesized from the legacy
	// single-company fields.
	SourceLegacy Source = "legacy"

	// SourceSystem means the membership is synthetic, granted by an
	// elevated system role rather than stored membership data.
	SourceSystem Source = "system"
)

// Entry is a stored membership list item: one tenant, exactly one role.
type Entry struct {
	TenantID uuid.UUID `json:"tenant_id"`
	RoleID   uuid.UUID `json:"role_id"`
}

// Membership is a resolved association between a user and a tenant.
// RoleID is zero for system memberships and for legacy memberships whose
// account never had a role assigned.
type Membership struct {
	TenantID uuid.UUID
	RoleID   uuid.UUID
	Source   Source
}

// User is the account document. Both membership representations may be
// populated at once; Resolve defines their precedence.
type User struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	SystemRole SystemRole `json:"system_role"`

	// Legacy single-tenant representation. Nil when the account was
	// created after the multi-tenant migration.
	LegacyCompanyID *uuid.UUID `json:"legacy_company_id,omitempty"`
	LegacyRoleID    *uuid.UUID `json:"legacy_role_id,omitempty"`

	// Memberships is the multi-tenant representation: zero or more
	// tenants, each with exactly one role.
	Memberships []Entry `json:"memberships"`

	// CurrentTenantID is the tenant context the session operates in.
	// When set it must point at a tenant the user is a member of.
	CurrentTenantID *uuid.UUID `json:"current_tenant_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTechnician reports whether the user holds the elevated system role.
func (u *User) IsTechnician() bool {
	return u != nil && u.SystemRole == SystemRoleTechnician
}
