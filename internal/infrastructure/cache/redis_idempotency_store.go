package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/costerbox/backend/internal/domain/shared"
)

// RedisIdempotencyStore deduplicates messages across service instances.
// Payment gateways deliver each webhook at least once, and also mirror it
// through the browser callback, so every instance must agree on which
// message IDs were already handled.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)

// NewRedisIdempotencyStore wraps an existing Redis client. keyPrefix
// namespaces the dedup keys; it defaults to "webhook:idempotency".
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "webhook:idempotency"
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: strings.TrimSuffix(keyPrefix, ":") + ":",
	}
}

// MarkProcessed records the message ID with a TTL. SETNX makes the
// check-and-set atomic, so exactly one caller across all instances gets
// true for a given ID.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, messageID string, ttl time.Duration) (bool, error) {
	fresh, err := s.client.SetNX(ctx, s.keyPrefix+messageID, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processed: %w", err)
	}
	return fresh, nil
}

// IsProcessed reports whether the message ID was already recorded.
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.keyPrefix+messageID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if message is processed: %w", err)
	}
	return exists > 0, nil
}

// Close releases the underlying Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}
