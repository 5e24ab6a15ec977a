package channelacl

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Store holds per-tenant, per-user channel grants. Grants are orthogonal
// to role permissions: a user may fail the role check and still pass a
// channel check, and vice versa. Callers needing both must check both.
type Store interface {
	// Grant adds a channel to the user's grant set. Granting an
	// already-granted channel is a no-op success.
	Grant(ctx context.Context, tenantID, userID uuid.UUID, channel string) error

	// Revoke removes a channel from the user's grant set. Revoking a
	// grant that does not exist is a no-op success.
	Revoke(ctx context.Context, tenantID, userID uuid.UUID, channel string) error

	// Check reports whether the user holds the channel within the tenant.
	Check(ctx context.Context, tenantID, userID uuid.UUID, channel string) (bool, error)

	// List returns every user's granted channels within the tenant,
	// channels sorted for stable output.
	List(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID][]string, error)
}

type grantKey struct {
	tenantID uuid.UUID
	userID   uuid.UUID
}

// inMemStore is the process-wide in-memory Store. A single RWMutex
// serializes writers; contention is negligible at the grant/revoke rates
// this store sees.
type inMemStore struct {
	mu     sync.RWMutex
	grants map[grantKey]map[string]struct{}
}

// NewInMemStore creates an empty in-memory Store. State lives for the
// process lifetime; there is no teardown beyond process exit.
func NewInMemStore() Store {
	return &inMemStore{grants: make(map[grantKey]map[string]struct{})}
}

func (s *inMemStore) Grant(ctx context.Context, tenantID, userID uuid.UUID, channel string) error {
	if channel == "" {
		return ErrEmptyChannel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey{tenantID: tenantID, userID: userID}
	set, ok := s.grants[key]
	if !ok {
		set = make(map[string]struct{})
		s.grants[key] = set
	}
	set[channel] = struct{}{}
	return nil
}

func (s *inMemStore) Revoke(ctx context.Context, tenantID, userID uuid.UUID, channel string) error {
	if channel == "" {
		return ErrEmptyChannel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey{tenantID: tenantID, userID: userID}
	set, ok := s.grants[key]
	if !ok {
		return nil
	}
	delete(set, channel)
	if len(set) == 0 {
		delete(s.grants, key)
	}
	return nil
}

func (s *inMemStore) Check(ctx context.Context, tenantID, userID uuid.UUID, channel string) (bool, error) {
	if channel == "" {
		return false, ErrEmptyChannel
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.grants[grantKey{tenantID: tenantID, userID: userID}]
	if !ok {
		return false, nil
	}
	_, granted := set[channel]
	return granted, nil
}

func (s *inMemStore) List(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID][]string)
	for key, set := range s.grants {
		if key.tenantID != tenantID {
			continue
		}
		channels := make([]string, 0, len(set))
		for channel := range set {
			channels = append(channels, channel)
		}
		slices.Sort(channels)
		out[key.userID] = channels
	}
	return out, nil
}

// Channels returns the user's granted channels within the tenant, sorted.
// Convenience over Check for response payloads that echo the grant set.
func Channels(ctx context.Context, s Store, tenantID, userID uuid.UUID) ([]string, error) {
	all, err := s.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return all[userID], nil
}
