package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

const ownerKeyPrefix = "marketplace:owner-summary:"

// MemcachedOwnerCache shares owner summaries between instances. Cache
// failures degrade to a miss.
type MemcachedOwnerCache struct {
	mc  *memcache.Client
	ttl time.Duration
}

func NewMemcachedOwnerCache(mc *memcache.Client, ttl time.Duration) *MemcachedOwnerCache {
	return &MemcachedOwnerCache{mc: mc, ttl: ttl}
}

func (c *MemcachedOwnerCache) Get(ctx context.Context, ownerID string) (domain.OwnerSummary, bool) {
	item, err := c.mc.Get(ownerKeyPrefix + ownerID)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			slog.WarnContext(ctx, "owner cache get failed", slog.String("module", "cache"), slog.String("error", err.Error()))
		}
		return domain.OwnerSummary{}, false
	}
	var summary domain.OwnerSummary
	if err := json.Unmarshal(item.Value, &summary); err != nil {
		return domain.OwnerSummary{}, false
	}
	return summary, true
}

func (c *MemcachedOwnerCache) Set(ctx context.Context, summary domain.OwnerSummary) {
	value, err := json.Marshal(summary)
	if err != nil {
		return
	}
	err = c.mc.Set(&memcache.Item{
		Key:        ownerKeyPrefix + summary.ID,
		Value:      value,
		Expiration: int32(c.ttl.Seconds()),
	})
	if err != nil {
		slog.WarnContext(ctx, "owner cache set failed", slog.String("module", "cache"), slog.String("error", err.Error()))
	}
}

func (c *MemcachedOwnerCache) Delete(ctx context.Context, ownerID string) {
	err := c.mc.Delete(ownerKeyPrefix + ownerID)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		slog.WarnContext(ctx, "owner cache delete failed", slog.String("module", "cache"), slog.String("error", err.Error()))
	}
}
