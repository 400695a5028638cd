package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Nixie-Tech-LLC/marquee/internal/signage"
)

const pendingMarker = "pending"

// Deduper tracks display batches by idempotency key. A key is "pending"
// for at most pendingTTL while its batch is being written and holds the
// committed count for ttl after.
type Deduper struct {
	client     *redis.Client
	pendingTTL time.Duration
	ttl        time.Duration
}

var _ signage.Deduper = (*Deduper)(nil)

func NewDeduper(client *redis.Client, pendingTTL, ttl time.Duration) *Deduper {
	return &Deduper{client: client, pendingTTL: pendingTTL, ttl: ttl}
}

func dedupeKey(key string) string {
	return "displays:idem:" + key
}

func (d *Deduper) Claim(ctx context.Context, key string) (int, bool, error) {
	k := dedupeKey(key)

	ok, err := d.client.SetNX(ctx, k, pendingMarker, d.pendingTTL).Result()
	if err != nil {
		return 0, false, err
	}
	if ok {
		return 0, false, nil
	}

	val, err := d.client.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between the two calls; try once more
		if ok, err = d.client.SetNX(ctx, k, pendingMarker, d.pendingTTL).Result(); err != nil {
			return 0, false, err
		}
		if ok {
			return 0, false, nil
		}
		return 0, false, signage.ErrBatchInFlight
	}
	if err != nil {
		return 0, false, err
	}
	if val == pendingMarker {
		return 0, false, signage.ErrBatchInFlight
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (d *Deduper) Complete(ctx context.Context, key string, count int) error {
	return d.client.Set(ctx, dedupeKey(key), strconv.Itoa(count), d.ttl).Err()
}

func (d *Deduper) Abandon(ctx context.Context, key string) error {
	return d.client.Del(ctx, dedupeKey(key)).Err()
}
