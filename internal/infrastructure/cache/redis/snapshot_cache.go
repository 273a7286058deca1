package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"customer-analytics-system/internal/application/analytics"
)

// SnapshotCache memoizes scored anomaly snapshots per filter tuple so a
// single dashboard load (overview + regions + segments + alerts) scores
// the batch once instead of once per endpoint. Entries are short-lived;
// staleness is bounded by the TTL and correctness never depends on a hit.
type SnapshotCache struct {
	client *Client
	ttl    time.Duration
}

// NewSnapshotCache creates a snapshot cache with the given TTL.
func NewSnapshotCache(client *Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get returns the cached snapshot for key, or (nil, nil) on a miss.
func (c *SnapshotCache) Get(ctx context.Context, key string) (*analytics.Snapshot, error) {
	payload, err := c.client.Redis().Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot cache: %w", err)
	}

	var snapshot analytics.Snapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	return &snapshot, nil
}

// Set stores the snapshot under key for the configured TTL.
func (c *SnapshotCache) Set(ctx context.Context, key string, snapshot *analytics.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := c.client.Redis().Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot cache: %w", err)
	}
	return nil
}
