package consolidation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gestora/backend/pkg/membership"
)

// DefaultExpectedCandidates is the clean pairwise duplicate the procedure
// is designed for: one survivor, one absorbed record.
const DefaultExpectedCandidates = 2

// TenantRef identifies a tenant in diagnosis and merge results.
type TenantRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// TenantReport describes one duplicate candidate: how it is referenced
// from user documents and how large its roster is.
type TenantReport struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     string    `json:"created_at"`
	LegacyMembers int       `json:"legacy_members"`
	ListMembers   int       `json:"list_members"`
	RosterSize    int       `json:"roster_size"`
}

// Recommendation names the record to keep (the oldest) and the records a
// consolidation would absorb.
type Recommendation struct {
	Keep   uuid.UUID   `json:"keep"`
	Remove []uuid.UUID `json:"remove"`
}

// Diagnosis is the read-only duplicate report.
type Diagnosis struct {
	Count          int            `json:"count"`
	Tenants        []TenantReport `json:"tenants"`
	Recommendation Recommendation `json:"recommendation"`
}

// MergeResult summarizes a completed consolidation.
type MergeResult struct {
	MigratedUsers int         `json:"migrated_user_count"`
	Destination   TenantRef   `json:"destination"`
	Absorbed      []TenantRef `json:"absorbed"`

	// OrphanedRoleIDs lists role ids still scoped to an absorbed tenant
	// after the merge. Roles are not remapped; reassigning them into the
	// survivor's role set is a manual follow-up.
	OrphanedRoleIDs []uuid.UUID `json:"orphaned_role_ids,omitempty"`
}

// Service repairs duplicate tenant records. It mutates many user documents
// and up to two company documents without a multi-record transaction, so
// Consolidate refuses to run concurrently within the process and must not
// be invoked from more than one operator at a time.
type Service struct {
	users     UserStore
	companies CompanyStore
	log       *slog.Logger

	mu sync.Mutex // held for the whole of Consolidate
}

// New creates a consolidation Service. A nil logger falls back to
// slog.Default.
func New(users UserStore, companies CompanyStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{users: users, companies: companies, log: log}
}

// DiagnoseDuplicates reports tenants matching the name pattern together
// with their membership counts and a keep/remove recommendation. It never
// mutates anything.
func (s *Service) DiagnoseDuplicates(ctx context.Context, namePattern string) (*Diagnosis, error) {
	candidates, err := s.companies.FindByNamePattern(ctx, namePattern)
	if err != nil {
		return nil, err
	}
	sortByAge(candidates)

	diagnosis := &Diagnosis{
		Count:   len(candidates),
		Tenants: make([]TenantReport, 0, len(candidates)),
	}

	for _, c := range candidates {
		legacy, err := s.users.FindByLegacyCompany(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		list, err := s.users.FindByMembershipTenant(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		diagnosis.Tenants = append(diagnosis.Tenants, TenantReport{
			ID:            c.ID,
			Name:          c.Name,
			CreatedAt:     c.CreatedAt.UTC().Format(time.RFC3339),
			LegacyMembers: len(legacy),
			ListMembers:   len(list),
			RosterSize:    len(c.Members),
		})
	}

	if len(candidates) > 0 {
		diagnosis.Recommendation.Keep = candidates[0].ID
		for _, c := range candidates[1:] {
			diagnosis.Recommendation.Remove = append(diagnosis.Recommendation.Remove, c.ID)
		}
	}

	return diagnosis, nil
}

// Consolidate merges duplicate tenant records matching the name pattern.
// The candidate set must match expectedCount exactly (pass 0 for the
// default of 2) and share one normalized name; otherwise the procedure
// aborts before touching any record.
//
// The oldest candidate survives. Every user reference to an absorbed
// tenant (legacy company field, membership list entry, current tenant)
// is rewritten to the survivor; role ids are preserved as-is. A
// membership entry for an absorbed tenant is dropped, not retargeted,
// when the user already holds an entry for the survivor, keeping at most
// one entry per tenant per user. Member
// rosters are unioned without duplicates and empty descriptive attributes
// on the survivor are filled from the absorbed records. Absorbed records
// are deleted last, only after every rewrite saved.
//
// There is no automatic rollback: a failed step surfaces as a
// MergeStepError and the repair is completed by running the procedure
// again, which re-applies only what is still pending.
func (s *Service) Consolidate(ctx context.Context, namePattern string, expectedCount int) (*MergeResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrConsolidationInProgress
	}
	defer s.mu.Unlock()

	if expectedCount <= 0 {
		expectedCount = DefaultExpectedCandidates
	}

	candidates, err := s.companies.FindByNamePattern(ctx, namePattern)
	if err != nil {
		return nil, err
	}
	if len(candidates) != expectedCount {
		return nil, fmt.Errorf("%w: expected %d candidates for %q, found %d",
			ErrUnexpectedCandidateCount, expectedCount, namePattern, len(candidates))
	}
	if !sameLogicalName(candidates) {
		return nil, fmt.Errorf("%w: candidates for %q do not share a normalized name",
			ErrCandidateNameMismatch, namePattern)
	}

	sortByAge(candidates)
	survivor := candidates[0]
	absorbed := candidates[1:]

	result := &MergeResult{
		Destination: TenantRef{ID: survivor.ID, Name: survivor.Name},
	}
	for _, c := range absorbed {
		result.Absorbed = append(result.Absorbed, TenantRef{ID: c.ID, Name: c.Name})
	}

	s.log.InfoContext(ctx, "starting tenant consolidation",
		slog.String("survivor", survivor.ID.String()),
		slog.Int("absorbed", len(absorbed)))

	for _, c := range absorbed {
		migrated, orphaned, err := s.migrateUsers(ctx, c.ID, survivor.ID)
		if err != nil {
			return nil, &MergeStepError{Step: StepMigrateUsers, Err: err}
		}
		result.MigratedUsers += migrated
		result.OrphanedRoleIDs = append(result.OrphanedRoleIDs, orphaned...)

		mergeRoster(survivor, c)
		fillAttributes(survivor, c)
	}

	if err := s.companies.Save(ctx, survivor); err != nil {
		return nil, &MergeStepError{Step: StepSaveSurvivor, Err: err}
	}

	for _, c := range absorbed {
		if err := s.companies.Delete(ctx, c.ID); err != nil {
			return nil, &MergeStepError{Step: StepDeleteAbsorbed, Err: err}
		}
	}

	if len(result.OrphanedRoleIDs) > 0 {
		s.log.WarnContext(ctx, "migrated memberships still reference roles scoped to absorbed tenants",
			slog.Int("orphaned_roles", len(result.OrphanedRoleIDs)))
	}
	s.log.InfoContext(ctx, "tenant consolidation complete",
		slog.String("survivor", survivor.ID.String()),
		slog.Int("migrated_users", result.MigratedUsers))

	return result, nil
}

// migrateUsers rewrites every user reference from the absorbed tenant to
// the survivor and saves each changed document once. Returns the number of
// migrated users and the role ids left referencing the absorbed tenant.
func (s *Service) migrateUsers(ctx context.Context, from, to uuid.UUID) (int, []uuid.UUID, error) {
	byID := make(map[uuid.UUID]*membership.User)
	collect := func(users []*membership.User) {
		for _, u := range users {
			if _, ok := byID[u.ID]; !ok {
				byID[u.ID] = u
			}
		}
	}

	legacy, err := s.users.FindByLegacyCompany(ctx, from)
	if err != nil {
		return 0, nil, err
	}
	collect(legacy)

	list, err := s.users.FindByMembershipTenant(ctx, from)
	if err != nil {
		return 0, nil, err
	}
	collect(list)

	current, err := s.users.FindByCurrentTenant(ctx, from)
	if err != nil {
		return 0, nil, err
	}
	collect(current)

	var migrated int
	var orphaned []uuid.UUID
	seenRoles := make(map[uuid.UUID]struct{})

	for _, u := range byID {
		changed := false

		if u.LegacyCompanyID != nil && *u.LegacyCompanyID == from {
			target := to
			u.LegacyCompanyID = &target
			changed = true
			if u.LegacyRoleID != nil {
				if _, ok := seenRoles[*u.LegacyRoleID]; !ok {
					seenRoles[*u.LegacyRoleID] = struct{}{}
					orphaned = append(orphaned, *u.LegacyRoleID)
				}
			}
		}

		// A user may hold entries for both the survivor and an absorbed
		// record; that is the duplicate-tenant bug seen from the user
		// side. Retargeting such an entry would leave two entries for
		// the surviving tenant, so it is dropped instead: at most one
		// entry per tenant per user. Role ids are preserved, never
		// remapped; a dropped entry's role is reported like any other
		// orphan.
		hasSurvivor := slices.ContainsFunc(u.Memberships, func(e membership.Entry) bool {
			return e.TenantID == to
		})
		kept := u.Memberships[:0]
		for _, e := range u.Memberships {
			if e.TenantID != from {
				kept = append(kept, e)
				continue
			}
			changed = true
			if e.RoleID != uuid.Nil {
				if _, ok := seenRoles[e.RoleID]; !ok {
					seenRoles[e.RoleID] = struct{}{}
					orphaned = append(orphaned, e.RoleID)
				}
			}
			if hasSurvivor {
				continue
			}
			e.TenantID = to
			hasSurvivor = true
			kept = append(kept, e)
		}
		u.Memberships = kept

		if u.CurrentTenantID != nil && *u.CurrentTenantID == from {
			target := to
			u.CurrentTenantID = &target
			changed = true
		}

		if !changed {
			continue
		}
		if err := s.users.Save(ctx, u); err != nil {
			return migrated, orphaned, fmt.Errorf("save user %s: %w", u.ID, err)
		}
		migrated++
	}

	return migrated, orphaned, nil
}

// mergeRoster appends the absorbed roster onto the survivor, skipping
// members already present by user identity.
func mergeRoster(survivor, absorbed *Company) {
	present := make(map[uuid.UUID]struct{}, len(survivor.Members))
	for _, m := range survivor.Members {
		present[m.UserID] = struct{}{}
	}
	for _, m := range absorbed.Members {
		if _, ok := present[m.UserID]; ok {
			continue
		}
		present[m.UserID] = struct{}{}
		survivor.Members = append(survivor.Members, m)
	}
}

// fillAttributes copies descriptive attributes onto the survivor where the
// survivor's value is empty. First non-empty wins; the survivor is never
// overwritten.
func fillAttributes(survivor, absorbed *Company) {
	if survivor.Description == "" && absorbed.Description != "" {
		survivor.Description = absorbed.Description
	}
	if survivor.Category == "" && absorbed.Category != "" {
		survivor.Category = absorbed.Category
	}
}

// sortByAge orders companies oldest first, id as a stable tie-breaker.
func sortByAge(companies []*Company) {
	slices.SortStableFunc(companies, func(a, b *Company) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}
