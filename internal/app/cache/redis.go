package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"fleetsync/internal/app/errors"
)

// allKeys is published when every collection becomes stale
const allKeys = "*"

// Redis shares invalidations with caches in other processes through a redis instance.
// Tracked and stale keys live in two sets; every invalidation is also published on channel.
type Redis struct {
	client  *redis.Client
	prefix  string
	channel string
}

// NewRedis creates a redis-backed invalidation target
func NewRedis(client *redis.Client, prefix, channel string) *Redis {
	return &Redis{
		client:  client,
		prefix:  prefix,
		channel: channel,
	}
}

func (r *Redis) trackedSet() string {
	return r.prefix + ":tracked"
}

func (r *Redis) staleSet() string {
	return r.prefix + ":stale"
}

// Track records fetched keys as fresh
func (r *Redis) Track(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}

	members := toMembers(keys)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.trackedSet(), members...)
		pipe.SRem(ctx, r.staleSet(), members...)

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToInvalidate, err)
	}

	return nil
}

// Invalidate marks keys stale and publishes them
func (r *Redis) Invalidate(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}

	members := toMembers(keys)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.trackedSet(), members...)
		pipe.SAdd(ctx, r.staleSet(), members...)
		pipe.Publish(ctx, r.channel, joinKeys(keys))

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToInvalidate, err)
	}

	return nil
}

// InvalidateAll copies every tracked key into the stale set and publishes a wildcard
func (r *Redis) InvalidateAll(ctx context.Context) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SUnionStore(ctx, r.staleSet(), r.staleSet(), r.trackedSet())
		pipe.Publish(ctx, r.channel, allKeys)

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToInvalidate, err)
	}

	return nil
}

// IsStale reports whether key is in the stale set
func (r *Redis) IsStale(ctx context.Context, key Key) (bool, error) {
	return r.client.SIsMember(ctx, r.staleSet(), key.String()).Result()
}

// Close releases the redis client
func (r *Redis) Close() error {
	return r.client.Close()
}

func toMembers(keys []Key) []interface{} {
	members := make([]interface{}, len(keys))
	for i, key := range keys {
		members[i] = key.String()
	}

	return members
}

func joinKeys(keys []Key) string {
	return strings.Join(KeyStrings(keys), ",")
}
