package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ghola/conversation-api/internal/api/metrics"
)

const dedupTTL = 24 * time.Hour

// DedupChecker provides message-event idempotency checks backed by Redis.
// Key format: message:<conversation_id>:<message_id>
//
// The TTL covers a full usage day: a redelivered message can only double-
// count while its usage record is still live.
type DedupChecker struct {
	client *redis.Client
}

// NewDedupChecker creates a DedupChecker wrapping the given Redis client.
func NewDedupChecker(client *redis.Client) *DedupChecker {
	return &DedupChecker{client: client}
}

// IsDuplicate reports whether this message has already been accounted.
func (d *DedupChecker) IsDuplicate(ctx context.Context, conversationID, messageID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(conversationID, messageID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	if n > 0 {
		metrics.MessagesDedupTotal.WithLabelValues("hit").Inc()
		return true, nil
	}
	metrics.MessagesDedupTotal.WithLabelValues("miss").Inc()
	return false, nil
}

// Mark records that this message has been accounted (expires after dedupTTL).
func (d *DedupChecker) Mark(ctx context.Context, conversationID, messageID string) error {
	return d.client.Set(ctx, d.key(conversationID, messageID), "1", dedupTTL).Err()
}

func (d *DedupChecker) key(conversationID, messageID string) string {
	return fmt.Sprintf("message:%s:%s", conversationID, messageID)
}
