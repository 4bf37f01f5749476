package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which message IDs have been handled, so a
// payment webhook delivered twice (or mirrored through the browser
// callback) is applied once.
type IdempotencyStore interface {
	// MarkProcessed records the message ID for ttl. It returns true when
	// the ID is new, false when it was already recorded.
	MarkProcessed(ctx context.Context, messageID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the message ID was already recorded.
	IsProcessed(ctx context.Context, messageID string) (bool, error)

	// Close releases the store's resources.
	Close() error
}

// IdempotencyConfig controls dedup behaviour.
type IdempotencyConfig struct {
	// TTL is how long processed message IDs are remembered.
	TTL time.Duration

	// Enabled turns dedup checking off entirely when false.
	Enabled bool
}

// DefaultIdempotencyConfig remembers messages for a day, which comfortably
// covers gateway retry schedules.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
