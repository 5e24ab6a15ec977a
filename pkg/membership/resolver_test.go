package membership_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestora/backend/pkg/membership"
)

func TestResolve_MembershipList(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	roleID := uuid.New()
	user := &membership.User{
		ID:         uuid.New(),
		SystemRole: membership.SystemRoleUser,
		Memberships: []membership.Entry{
			{TenantID: uuid.New(), RoleID: uuid.New()},
			{TenantID: tenantID, RoleID: roleID},
		},
	}

	m, err := membership.Resolve(user, tenantID)
	require.NoError(t, err)
	assert.Equal(t, tenantID, m.TenantID)
	assert.Equal(t, roleID, m.RoleID)
	assert.Equal(t, membership.SourceMembershipList, m.Source)
}

func TestResolve_ListWinsOverLegacy(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	listRoleID := uuid.New()
	legacyRoleID := uuid.New()
	user := &membership.User{
		ID:              uuid.New(),
		SystemRole:      membership.SystemRoleUser,
		LegacyCompanyID: &tenantID,
		LegacyRoleID:    &legacyRoleID,
		Memberships: []membership.Entry{
			{TenantID: tenantID, RoleID: listRoleID},
		},
	}

	m, err := membership.Resolve(user, tenantID)
	require.NoError(t, err)
	assert.Equal(t, listRoleID, m.RoleID, "membership list entry is authoritative over legacy fields")
	assert.Equal(t, membership.SourceMembershipList, m.Source)
}

func TestResolve_LegacyFallback(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	legacyRoleID := uuid.New()

	t.Run("with legacy role", func(t *testing.T) {
		t.Parallel()

		user := &membership.User{
			ID:              uuid.New(),
			SystemRole:      membership.SystemRoleUser,
			LegacyCompanyID: &tenantID,
			LegacyRoleID:    &legacyRoleID,
		}

		m, err := membership.Resolve(user, tenantID)
		require.NoError(t, err)
		assert.Equal(t, legacyRoleID, m.RoleID)
		assert.Equal(t, membership.SourceLegacy, m.Source)
	})

	t.Run("without legacy role", func(t *testing.T) {
		t.Parallel()

		user := &membership.User{
			ID:              uuid.New(),
			SystemRole:      membership.SystemRoleUser,
			LegacyCompanyID: &tenantID,
		}

		m, err := membership.Resolve(user, tenantID)
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, m.RoleID)
		assert.Equal(t, membership.SourceLegacy, m.Source)
	})
}

func TestResolve_NoMembership(t *testing.T) {
	t.Parallel()

	otherTenant := uuid.New()
	user := &membership.User{
		ID:         uuid.New(),
		SystemRole: membership.SystemRoleUser,
		Memberships: []membership.Entry{
			{TenantID: otherTenant, RoleID: uuid.New()},
		},
	}

	_, err := membership.Resolve(user, uuid.New())
	assert.True(t, errors.Is(err, membership.ErrNoMembership))

	_, err = membership.Resolve(nil, uuid.New())
	assert.True(t, errors.Is(err, membership.ErrNoMembership))
}

func TestResolve_Technician(t *testing.T) {
	t.Parallel()

	user := &membership.User{
		ID:         uuid.New(),
		SystemRole: membership.SystemRoleTechnician,
	}

	// Including tenants that do not exist anywhere.
	for n := 0; n < 3; n++ {
		tenantID := uuid.New()
		m, err := membership.Resolve(user, tenantID)
		require.NoError(t, err)
		assert.Equal(t, tenantID, m.TenantID)
		assert.Equal(t, uuid.Nil, m.RoleID)
		assert.Equal(t, membership.SourceSystem, m.Source)
	}
}

func TestCanAccessTenant(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	legacyTenantID := uuid.New()

	tests := []struct {
		name   string
		user   *membership.User
		tenant uuid.UUID
		want   bool
	}{
		{
			name:   "technician accesses any tenant",
			user:   &membership.User{SystemRole: membership.SystemRoleTechnician},
			tenant: uuid.New(),
			want:   true,
		},
		{
			name: "member via membership list",
			user: &membership.User{
				SystemRole:  membership.SystemRoleUser,
				Memberships: []membership.Entry{{TenantID: tenantID, RoleID: uuid.New()}},
			},
			tenant: tenantID,
			want:   true,
		},
		{
			name: "member via legacy company",
			user: &membership.User{
				SystemRole:      membership.SystemRoleUser,
				LegacyCompanyID: &legacyTenantID,
			},
			tenant: legacyTenantID,
			want:   true,
		},
		{
			name: "not a member",
			user: &membership.User{
				SystemRole:  membership.SystemRoleUser,
				Memberships: []membership.Entry{{TenantID: tenantID, RoleID: uuid.New()}},
			},
			tenant: uuid.New(),
			want:   false,
		},
		{
			name:   "nil user",
			user:   nil,
			tenant: tenantID,
			want:   false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, membership.CanAccessTenant(tt.user, tt.tenant))
		})
	}
}

func TestTenantIDs(t *testing.T) {
	t.Parallel()

	tenantA := uuid.New()
	tenantB := uuid.New()

	t.Run("legacy appended when distinct", func(t *testing.T) {
		t.Parallel()

		user := &membership.User{
			LegacyCompanyID: &tenantB,
			Memberships:     []membership.Entry{{TenantID: tenantA, RoleID: uuid.New()}},
		}
		assert.Equal(t, []uuid.UUID{tenantA, tenantB}, membership.TenantIDs(user))
	})

	t.Run("legacy deduplicated", func(t *testing.T) {
		t.Parallel()

		user := &membership.User{
			LegacyCompanyID: &tenantA,
			Memberships:     []membership.Entry{{TenantID: tenantA, RoleID: uuid.New()}},
		}
		assert.Equal(t, []uuid.UUID{tenantA}, membership.TenantIDs(user))
	})

	t.Run("nil user", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, membership.TenantIDs(nil))
	})
}
