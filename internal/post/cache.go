// AngelaMos | 2026
// cache.go

package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	feedVersionKey = "postgate:feed:version"
	feedKeyFormat  = "postgate:feed:v%d:approved"
)

// FeedCache holds the public listing. Entries are keyed by a version that
// every visibility change bumps, so a listing read before a change can
// never be served after it.
type FeedCache interface {
	Lookup(ctx context.Context) (posts []Post, version int64, hit bool)
	Store(ctx context.Context, version int64, posts []Post)
	InvalidatePublicFeed(ctx context.Context) error
}

type RedisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisFeedCache(client *redis.Client, ttl time.Duration) *RedisFeedCache {
	return &RedisFeedCache{client: client, ttl: ttl}
}

// Lookup fails open: any redis error is a miss and the caller reads the
// database. A negative version tells Store not to write.
func (c *RedisFeedCache) Lookup(ctx context.Context) ([]Post, int64, bool) {
	version, err := c.client.Get(ctx, feedVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		version = 0
	} else if err != nil {
		slog.WarnContext(ctx, "feed cache unavailable", "error", err)
		return nil, -1, false
	}

	raw, err := c.client.Get(ctx, feedKey(version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, false
	}
	if err != nil {
		slog.WarnContext(ctx, "feed cache read failed", "error", err)
		return nil, -1, false
	}

	var posts []Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		slog.WarnContext(ctx, "feed cache entry corrupt", "error", err)
		return nil, version, false
	}

	return posts, version, true
}

func (c *RedisFeedCache) Store(ctx context.Context, version int64, posts []Post) {
	if version < 0 {
		return
	}

	raw, err := json.Marshal(posts)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, feedKey(version), raw, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "feed cache write failed", "error", err)
	}
}

func (c *RedisFeedCache) InvalidatePublicFeed(ctx context.Context) error {
	if err := c.client.Incr(ctx, feedVersionKey).Err(); err != nil {
		return fmt.Errorf("bump feed version: %w", err)
	}
	return nil
}

func feedKey(version int64) string {
	return fmt.Sprintf(feedKeyFormat, version)
}

type noopFeedCache struct{}

func (noopFeedCache) Lookup(context.Context) ([]Post, int64, bool) { return nil, -1, false }

func (noopFeedCache) Store(context.Context, int64, []Post) {}

func (noopFeedCache) InvalidatePublicFeed(context.Context) error { return nil }
