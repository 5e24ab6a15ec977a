package consolidation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestora/backend/pkg/membership"
	"github.com/gestora/backend/svc/consolidation"
)

func ptr[T any](v T) *T { return &v }

func member(userID uuid.UUID) consolidation.Member {
	return consolidation.Member{UserID: userID, JoinedAt: time.Unix(1000, 0).UTC()}
}

func TestConsolidate_PairwiseMerge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()

	older := &consolidation.Company{
		ID:        uuid.New(),
		Name:      "Acme Hardware",
		CreatedAt: base,
	}
	newer := &consolidation.Company{
		ID:          uuid.New(),
		Name:        "Acme Hardware",
		Description: "hardware wholesale",
		Category:    "retail",
		CreatedAt:   base.Add(time.Hour),
	}

	sharedMember := uuid.New()
	older.Members = []consolidation.Member{member(sharedMember)}
	newer.Members = []consolidation.Member{member(sharedMember), member(uuid.New())}

	roleID := uuid.New()
	legacyUser := &membership.User{
		ID:              uuid.New(),
		LegacyCompanyID: ptr(newer.ID),
		LegacyRoleID:    ptr(roleID),
	}
	listUser := &membership.User{
		ID:              uuid.New(),
		Memberships:     []membership.Entry{{TenantID: newer.ID, RoleID: roleID}},
		CurrentTenantID: ptr(newer.ID),
	}
	bystander := &membership.User{
		ID:          uuid.New(),
		Memberships: []membership.Entry{{TenantID: older.ID, RoleID: uuid.New()}},
	}

	users := consolidation.NewInMemUserStore(legacyUser, listUser, bystander)
	companies := consolidation.NewInMemCompanyStore(older, newer)
	svc := consolidation.New(users, companies, nil)

	result, err := svc.Consolidate(ctx, "acme", 2)
	require.NoError(t, err)

	assert.Equal(t, older.ID, result.Destination.ID, "oldest candidate must survive")
	require.Len(t, result.Absorbed, 1)
	assert.Equal(t, newer.ID, result.Absorbed[0].ID)
	assert.Equal(t, 2, result.MigratedUsers)
	assert.ElementsMatch(t, []uuid.UUID{roleID}, result.OrphanedRoleIDs)

	// Every user reference now points at the survivor.
	got, err := users.GetByID(ctx, legacyUser.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, *got.LegacyCompanyID)
	assert.Equal(t, roleID, *got.LegacyRoleID, "legacy role must be preserved")

	got, err = users.GetByID(ctx, listUser.ID)
	require.NoError(t, err)
	require.Len(t, got.Memberships, 1)
	assert.Equal(t, older.ID, got.Memberships[0].TenantID)
	assert.Equal(t, roleID, got.Memberships[0].RoleID, "role id must not be remapped")
	assert.Equal(t, older.ID, *got.CurrentTenantID)

	// Roster is a union without duplicate user entries.
	survivor, err := companies.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Len(t, survivor.Members, 2)

	// Empty descriptive attributes filled from the absorbed record.
	assert.Equal(t, "hardware wholesale", survivor.Description)
	assert.Equal(t, "retail", survivor.Category)

	// Absorbed record is gone.
	_, err = companies.GetByID(ctx, newer.ID)
	assert.True(t, errors.Is(err, consolidation.ErrCompanyNotFound))

	// A follow-up diagnosis reports a single tenant.
	diagnosis, err := svc.DiagnoseDuplicates(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 1, diagnosis.Count)
}

func TestConsolidate_UserInBothCandidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()

	older := &consolidation.Company{ID: uuid.New(), Name: "Acme Hardware", CreatedAt: base}
	newer := &consolidation.Company{ID: uuid.New(), Name: "Acme Hardware", CreatedAt: base.Add(time.Hour)}

	survivorRole := uuid.New()
	absorbedRole := uuid.New()
	doubled := &membership.User{
		ID: uuid.New(),
		Memberships: []membership.Entry{
			{TenantID: older.ID, RoleID: survivorRole},
			{TenantID: newer.ID, RoleID: absorbedRole},
		},
	}

	users := consolidation.NewInMemUserStore(doubled)
	svc := consolidation.New(users, consolidation.NewInMemCompanyStore(older, newer), nil)

	result, err := svc.Consolidate(ctx, "acme", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, result.MigratedUsers)

	// The absorbed entry is dropped, not retargeted: one entry per
	// tenant per user, and the survivor entry keeps its role.
	got, err := users.GetByID(ctx, doubled.ID)
	require.NoError(t, err)
	require.Len(t, got.Memberships, 1)
	assert.Equal(t, older.ID, got.Memberships[0].TenantID)
	assert.Equal(t, survivorRole, got.Memberships[0].RoleID)

	// The dropped entry's role is reported for manual follow-up.
	assert.ElementsMatch(t, []uuid.UUID{absorbedRole}, result.OrphanedRoleIDs)
}

func TestConsolidate_SurvivorAttributesNeverOverwritten(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()

	older := &consolidation.Company{
		ID:          uuid.New(),
		Name:        "Bolt Logistics",
		Description: "original description",
		CreatedAt:   base,
	}
	newer := &consolidation.Company{
		ID:          uuid.New(),
		Name:        "Bolt Logistics",
		Description: "later description",
		Category:    "logistics",
		CreatedAt:   base.Add(time.Minute),
	}

	companies := consolidation.NewInMemCompanyStore(older, newer)
	svc := consolidation.New(consolidation.NewInMemUserStore(), companies, nil)

	_, err := svc.Consolidate(ctx, "bolt", 0) // 0 means the default of 2
	require.NoError(t, err)

	survivor, err := companies.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "original description", survivor.Description)
	assert.Equal(t, "logistics", survivor.Category, "empty attribute is filled")
}

func TestConsolidate_WrongCandidateCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()

	companies := []*consolidation.Company{
		{ID: uuid.New(), Name: "Trio Foods", CreatedAt: base},
		{ID: uuid.New(), Name: "Trio Foods", CreatedAt: base.Add(time.Minute)},
		{ID: uuid.New(), Name: "Trio Foods", CreatedAt: base.Add(2 * time.Minute)},
	}
	user := &membership.User{
		ID:              uuid.New(),
		LegacyCompanyID: ptr(companies[1].ID),
	}

	tests := []struct {
		name     string
		seed     []*consolidation.Company
		expected int
	}{
		{name: "one candidate", seed: companies[:1], expected: 2},
		{name: "three candidates", seed: companies, expected: 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			userStore := consolidation.NewInMemUserStore(user)
			companyStore := consolidation.NewInMemCompanyStore(tt.seed...)
			svc := consolidation.New(userStore, companyStore, nil)

			_, err := svc.Consolidate(ctx, "trio", tt.expected)
			assert.True(t, errors.Is(err, consolidation.ErrUnexpectedCandidateCount))

			// Zero mutations: user and companies unchanged.
			got, err := userStore.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, companies[1].ID, *got.LegacyCompanyID)
			for _, c := range tt.seed {
				stored, err := companyStore.GetByID(ctx, c.ID)
				require.NoError(t, err)
				assert.Equal(t, c.Members, stored.Members)
			}
		})
	}
}

func TestConsolidate_NameMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()

	companies := consolidation.NewInMemCompanyStore(
		&consolidation.Company{ID: uuid.New(), Name: "Nordica Shipping", CreatedAt: base},
		&consolidation.Company{ID: uuid.New(), Name: "Nordica Freight", CreatedAt: base.Add(time.Minute)},
	)
	svc := consolidation.New(consolidation.NewInMemUserStore(), companies, nil)

	_, err := svc.Consolidate(ctx, "nordica", 2)
	assert.True(t, errors.Is(err, consolidation.ErrCandidateNameMismatch))
}

func TestConsolidate_AcmeScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	acme1 := &consolidation.Company{
		ID:        uuid.New(),
		Name:      "Acme",
		CreatedAt: time.Unix(10, 0).UTC(),
		Members: []consolidation.Member{
			member(uuid.New()), member(uuid.New()), member(uuid.New()),
		},
	}
	acme2 := &consolidation.Company{
		ID:          uuid.New(),
		Name:        "Acme",
		Description: "the real acme",
		CreatedAt:   time.Unix(20, 0).UTC(),
		Members:     []consolidation.Member{member(uuid.New())},
	}

	companies := consolidation.NewInMemCompanyStore(acme1, acme2)
	svc := consolidation.New(consolidation.NewInMemUserStore(), companies, nil)

	result, err := svc.Consolidate(ctx, "acme", 2)
	require.NoError(t, err)
	assert.Equal(t, acme1.ID, result.Destination.ID)

	survivor, err := companies.GetByID(ctx, acme1.ID)
	require.NoError(t, err)
	assert.Len(t, survivor.Members, 4)
	assert.Equal(t, "the real acme", survivor.Description)

	_, err = companies.GetByID(ctx, acme2.ID)
	assert.True(t, errors.Is(err, consolidation.ErrCompanyNotFound))
}

// failingUserStore fails every Save after the first n successes.
type failingUserStore struct {
	consolidation.UserStore
	allowed int
	saves   int
}

func (s *failingUserStore) Save(ctx context.Context, u *membership.User) error {
	s.saves++
	if s.saves > s.allowed {
		return errors.New("storage offline")
	}
	return s.UserStore.Save(ctx, u)
}

func TestConsolidate_PartialFailureStopsBeforeDeletion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()

	older := &consolidation.Company{ID: uuid.New(), Name: "Vega Parts", CreatedAt: base}
	newer := &consolidation.Company{ID: uuid.New(), Name: "Vega Parts", CreatedAt: base.Add(time.Minute)}

	users := []*membership.User{
		{ID: uuid.New(), LegacyCompanyID: ptr(newer.ID)},
		{ID: uuid.New(), LegacyCompanyID: ptr(newer.ID)},
	}

	userStore := &failingUserStore{
		UserStore: consolidation.NewInMemUserStore(users...),
		allowed:   1,
	}
	companyStore := consolidation.NewInMemCompanyStore(older, newer)
	svc := consolidation.New(userStore, companyStore, nil)

	_, err := svc.Consolidate(ctx, "vega", 2)
	require.Error(t, err)

	var stepErr *consolidation.MergeStepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, consolidation.StepMigrateUsers, stepErr.Step)

	// The absorbed record must still exist: deletion never ran.
	_, err = companyStore.GetByID(ctx, newer.ID)
	assert.NoError(t, err)

	// A retry with healthy storage completes the repair.
	svc = consolidation.New(userStore.UserStore, companyStore, nil)
	result, err := svc.Consolidate(ctx, "vega", 2)
	require.NoError(t, err)
	assert.Equal(t, older.ID, result.Destination.ID)
}

// blockingCompanyStore parks FindByNamePattern until released.
type blockingCompanyStore struct {
	consolidation.CompanyStore
	entered chan struct{}
	release chan struct{}
}

func (s *blockingCompanyStore) FindByNamePattern(ctx context.Context, pattern string) ([]*consolidation.Company, error) {
	close(s.entered)
	<-s.release
	return s.CompanyStore.FindByNamePattern(ctx, pattern)
}

func TestConsolidate_RefusesConcurrentRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()

	store := &blockingCompanyStore{
		CompanyStore: consolidation.NewInMemCompanyStore(
			&consolidation.Company{ID: uuid.New(), Name: "Slow Co", CreatedAt: base},
			&consolidation.Company{ID: uuid.New(), Name: "Slow Co", CreatedAt: base.Add(time.Minute)},
		),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := consolidation.New(consolidation.NewInMemUserStore(), store, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Consolidate(ctx, "slow", 2)
		done <- err
	}()

	<-store.entered
	_, err := svc.Consolidate(ctx, "slow", 2)
	assert.True(t, errors.Is(err, consolidation.ErrConsolidationInProgress))

	close(store.release)
	require.NoError(t, <-done)
}

func TestDiagnoseDuplicates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0).UTC()

	older := &consolidation.Company{
		ID:        uuid.New(),
		Name:      "Duo Traders",
		CreatedAt: base,
		Members:   []consolidation.Member{member(uuid.New())},
	}
	newer := &consolidation.Company{
		ID:        uuid.New(),
		Name:      "Duo Traders",
		CreatedAt: base.Add(time.Hour),
	}

	users := consolidation.NewInMemUserStore(
		&membership.User{ID: uuid.New(), LegacyCompanyID: ptr(older.ID)},
		&membership.User{ID: uuid.New(), Memberships: []membership.Entry{{TenantID: newer.ID, RoleID: uuid.New()}}},
		&membership.User{ID: uuid.New(), Memberships: []membership.Entry{{TenantID: newer.ID, RoleID: uuid.New()}}},
	)
	svc := consolidation.New(users, consolidation.NewInMemCompanyStore(older, newer), nil)

	diagnosis, err := svc.DiagnoseDuplicates(ctx, "duo")
	require.NoError(t, err)

	assert.Equal(t, 2, diagnosis.Count)
	require.Len(t, diagnosis.Tenants, 2)

	// Oldest first, and recommended as the keeper.
	assert.Equal(t, older.ID, diagnosis.Tenants[0].ID)
	assert.Equal(t, 1, diagnosis.Tenants[0].LegacyMembers)
	assert.Equal(t, 0, diagnosis.Tenants[0].ListMembers)
	assert.Equal(t, 1, diagnosis.Tenants[0].RosterSize)
	assert.Equal(t, 2, diagnosis.Tenants[1].ListMembers)

	assert.Equal(t, older.ID, diagnosis.Recommendation.Keep)
	assert.Equal(t, []uuid.UUID{newer.ID}, diagnosis.Recommendation.Remove)
}
