package permission

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// inMemCatalogSource serves a fixed permission catalog from memory.
type inMemCatalogSource struct {
	entries map[string]Permission
}

// NewInMemCatalogSource creates a CatalogSource from the given permissions.
// Entries with an empty code are skipped; later duplicates win.
func NewInMemCatalogSource(permissions ...Permission) CatalogSource {
	entries := make(map[string]Permission, len(permissions))
	for _, p := range permissions {
		if p.Code == "" {
			continue
		}
		entries[p.Code] = p
	}
	return &inMemCatalogSource{entries: entries}
}

// Load returns a copy of the catalog so callers cannot mutate the source.
func (s *inMemCatalogSource) Load(ctx context.Context) (map[string]Permission, error) {
	out := make(map[string]Permission, len(s.entries))
	for code, p := range s.entries {
		out[code] = p
	}
	return out, nil
}

// inMemRoleStore is a thread-safe in-memory RoleStore, used in tests and
// as a stand-in before the document store is wired.
type inMemRoleStore struct {
	mu    sync.RWMutex
	roles map[uuid.UUID]Role
}

// NewInMemRoleStore creates a RoleStore holding deep copies of the given
// roles.
func NewInMemRoleStore(roles ...Role) RoleStore {
	byID := make(map[uuid.UUID]Role, len(roles))
	for _, r := range roles {
		r.PermissionCodes = slices.Clone(r.PermissionCodes)
		byID[r.ID] = r
	}
	return &inMemRoleStore{roles: byID}
}

// GetRole returns a copy of the role or ErrRoleNotFound.
func (s *inMemRoleStore) GetRole(ctx context.Context, id uuid.UUID) (*Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.roles[id]
	if !ok {
		return nil, ErrRoleNotFound
	}
	r.PermissionCodes = slices.Clone(r.PermissionCodes)
	return &r, nil
}
