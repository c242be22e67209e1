package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/midtrans/midtrans-cli/internal/api"
)

const (
	defaultDedupTTL    = 24 * time.Hour
	dedupKeyPrefix     = "midtrans:notification:"
	duplicateHeaderKey = "X-Notification-Duplicate"
)

// notificationDeduper remembers which verified (transaction, status) pairs
// were already delivered so retried notifications can be flagged.
type notificationDeduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func newNotificationDeduper(ctx context.Context, redisURL string, ttl time.Duration) (*notificationDeduper, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid --redis-url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.Addr, err)
	}
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &notificationDeduper{rdb: rdb, ttl: ttl}, nil
}

// dedupKey identifies a verified status. A transaction moving from pending to
// settlement produces two distinct keys.
func dedupKey(status api.Response) string {
	return dedupKeyPrefix + status.String("transaction_id") + ":" + status.TransactionStatus()
}

// FirstSeen records status and reports whether it had not been recorded yet.
func (d *notificationDeduper) FirstSeen(ctx context.Context, status api.Response) (bool, error) {
	return d.rdb.SetNX(ctx, dedupKey(status), time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
}

func (d *notificationDeduper) Close() error {
	return d.rdb.Close()
}
