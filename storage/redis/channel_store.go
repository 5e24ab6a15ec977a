package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gestora/backend/pkg/channelacl"
)

// Config holds the channel ACL redis connection settings.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // ConnectionURL is the redis URL, e.g. "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`             // RetryAttempts is the number of connection attempts.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`            // RetryInterval is the wait between connection attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`          // ConnectTimeout bounds the whole connection phase.
}

// Connect establishes a redis client connection, retrying per the config.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidConnectionURL, err)
	}

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrNotReady
}

const keyPrefix = "channelacl"

// ChannelStore is a durable channelacl.Store backed by redis sets, one set
// per (tenant, user) pair. Redis serializes commands per key, which gives
// the lost-update protection the in-memory store provides with its mutex.
type ChannelStore struct {
	client *redis.Client
}

// NewChannelStore creates a ChannelStore on the given client.
func NewChannelStore(client *redis.Client) *ChannelStore {
	return &ChannelStore{client: client}
}

func grantKey(tenantID, userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, tenantID, userID)
}

// Grant adds the channel to the user's set. Re-granting is a no-op.
func (s *ChannelStore) Grant(ctx context.Context, tenantID, userID uuid.UUID, channel string) error {
	if channel == "" {
		return channelacl.ErrEmptyChannel
	}
	if err := s.client.SAdd(ctx, grantKey(tenantID, userID), channel).Err(); err != nil {
		return errors.Join(channelacl.ErrStoreUnavailable, err)
	}
	return nil
}

// Revoke removes the channel from the user's set. Revoking a grant that
// does not exist is a no-op.
func (s *ChannelStore) Revoke(ctx context.Context, tenantID, userID uuid.UUID, channel string) error {
	if channel == "" {
		return channelacl.ErrEmptyChannel
	}
	if err := s.client.SRem(ctx, grantKey(tenantID, userID), channel).Err(); err != nil {
		return errors.Join(channelacl.ErrStoreUnavailable, err)
	}
	return nil
}

// Check reports whether the user holds the channel within the tenant.
func (s *ChannelStore) Check(ctx context.Context, tenantID, userID uuid.UUID, channel string) (bool, error) {
	if channel == "" {
		return false, channelacl.ErrEmptyChannel
	}
	granted, err := s.client.SIsMember(ctx, grantKey(tenantID, userID), channel).Result()
	if err != nil {
		return false, errors.Join(channelacl.ErrStoreUnavailable, err)
	}
	return granted, nil
}

// List walks the tenant's grant keys and returns each user's channels,
// sorted for stable output.
func (s *ChannelStore) List(ctx context.Context, tenantID uuid.UUID) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string)
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, tenantID)

	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		userID, err := userIDFromKey(key)
		if err != nil {
			return nil, err
		}

		channels, err := s.client.SMembers(ctx, key).Result()
		if err != nil {
			return nil, errors.Join(channelacl.ErrStoreUnavailable, err)
		}
		if len(channels) == 0 {
			continue
		}
		slices.Sort(channels)
		out[userID] = channels
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Join(channelacl.ErrStoreUnavailable, err)
	}

	return out, nil
}

func userIDFromKey(key string) (uuid.UUID, error) {
	idx := strings.LastIndexByte(key, ':')
	if idx < 0 {
		return uuid.Nil, fmt.Errorf("%w: malformed key %q", ErrMalformedKey, key)
	}
	userID, err := uuid.Parse(key[idx+1:])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed key %q: %v", ErrMalformedKey, key, err)
	}
	return userID, nil
}
