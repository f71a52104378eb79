package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// DedupChecker provides idempotency checks backed by Redis.
// Key format: dedup:<token>
type DedupChecker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client redis.UniversalClient) *DedupChecker {
	return &DedupChecker{client: client, ttl: dedupTTL}
}

// Claim records token and reports whether this is its first sighting.
// The marker expires after the TTL.
func (d *DedupChecker) Claim(ctx context.Context, token string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.key(token), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup claim: %w", err)
	}
	return ok, nil
}

func (d *DedupChecker) key(token string) string {
	return "dedup:" + token
}
