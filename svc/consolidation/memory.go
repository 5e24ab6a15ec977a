package consolidation

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/gestora/backend/pkg/membership"
)

// InMemCompanyStore is a thread-safe in-memory CompanyStore. Documents are
// copied on the way in and out, so mutations only persist through Save,
// the same observable behavior as the document store.
type InMemCompanyStore struct {
	mu        sync.RWMutex
	companies map[uuid.UUID]*Company
}

// NewInMemCompanyStore creates a store seeded with copies of the given
// companies.
func NewInMemCompanyStore(companies ...*Company) *InMemCompanyStore {
	s := &InMemCompanyStore{companies: make(map[uuid.UUID]*Company, len(companies))}
	for _, c := range companies {
		s.companies[c.ID] = copyCompany(c)
	}
	return s
}

// FindByNamePattern matches case-insensitively on substring.
func (s *InMemCompanyStore) FindByNamePattern(ctx context.Context, pattern string) ([]*Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(pattern)
	var out []*Company
	for _, c := range s.companies {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, copyCompany(c))
		}
	}
	return out, nil
}

// GetByID returns a copy of the company or ErrCompanyNotFound.
func (s *InMemCompanyStore) GetByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.companies[id]
	if !ok {
		return nil, ErrCompanyNotFound
	}
	return copyCompany(c), nil
}

func (s *InMemCompanyStore) Save(ctx context.Context, company *Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.companies[company.ID] = copyCompany(company)
	return nil
}

func (s *InMemCompanyStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.companies[id]; !ok {
		return ErrCompanyNotFound
	}
	delete(s.companies, id)
	return nil
}

// InMemUserStore is a thread-safe in-memory UserStore with the same
// copy-on-read, copy-on-write behavior as InMemCompanyStore.
type InMemUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*membership.User
}

// NewInMemUserStore creates a store seeded with copies of the given users.
func NewInMemUserStore(users ...*membership.User) *InMemUserStore {
	s := &InMemUserStore{users: make(map[uuid.UUID]*membership.User, len(users))}
	for _, u := range users {
		s.users[u.ID] = copyUser(u)
	}
	return s
}

// GetByID returns a copy of the user or membership.ErrUserNotFound.
func (s *InMemUserStore) GetByID(ctx context.Context, id uuid.UUID) (*membership.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, membership.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (s *InMemUserStore) FindByLegacyCompany(ctx context.Context, tenantID uuid.UUID) ([]*membership.User, error) {
	return s.find(func(u *membership.User) bool {
		return u.LegacyCompanyID != nil && *u.LegacyCompanyID == tenantID
	}), nil
}

func (s *InMemUserStore) FindByMembershipTenant(ctx context.Context, tenantID uuid.UUID) ([]*membership.User, error) {
	return s.find(func(u *membership.User) bool {
		return slices.ContainsFunc(u.Memberships, func(e membership.Entry) bool {
			return e.TenantID == tenantID
		})
	}), nil
}

func (s *InMemUserStore) FindByCurrentTenant(ctx context.Context, tenantID uuid.UUID) ([]*membership.User, error) {
	return s.find(func(u *membership.User) bool {
		return u.CurrentTenantID != nil && *u.CurrentTenantID == tenantID
	}), nil
}

func (s *InMemUserStore) Save(ctx context.Context, user *membership.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *InMemUserStore) find(match func(*membership.User) bool) []*membership.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*membership.User
	for _, u := range s.users {
		if match(u) {
			out = append(out, copyUser(u))
		}
	}
	return out
}

func copyCompany(c *Company) *Company {
	out := *c
	out.Members = slices.Clone(c.Members)
	return &out
}

func copyUser(u *membership.User) *membership.User {
	out := *u
	out.Memberships = slices.Clone(u.Memberships)
	if u.LegacyCompanyID != nil {
		id := *u.LegacyCompanyID
		out.LegacyCompanyID = &id
	}
	if u.LegacyRoleID != nil {
		id := *u.LegacyRoleID
		out.LegacyRoleID = &id
	}
	if u.CurrentTenantID != nil {
		id := *u.CurrentTenantID
		out.CurrentTenantID = &id
	}
	return &out
}
