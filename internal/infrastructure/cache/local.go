package cache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

// LocalOwnerCache keeps owner summaries in process memory.
type LocalOwnerCache struct {
	cache *cache.Cache
}

func NewLocalOwnerCache(ttl time.Duration) *LocalOwnerCache {
	return &LocalOwnerCache{cache: cache.New(ttl, 2*ttl)}
}

func (c *LocalOwnerCache) Get(_ context.Context, ownerID string) (domain.OwnerSummary, bool) {
	v, ok := c.cache.Get(ownerID)
	if !ok {
		return domain.OwnerSummary{}, false
	}
	summary, ok := v.(domain.OwnerSummary)
	return summary, ok
}

func (c *LocalOwnerCache) Set(_ context.Context, summary domain.OwnerSummary) {
	c.cache.SetDefault(summary.ID, summary)
}

func (c *LocalOwnerCache) Delete(_ context.Context, ownerID string) {
	c.cache.Delete(ownerID)
}

// LocalLoginLimiter counts failed logins in process memory. It backs the
// memory storage driver where no redis is configured.
type LocalLoginLimiter struct {
	cache  *cache.Cache
	max    int
	window time.Duration
}

func NewLocalLoginLimiter(max int, window time.Duration) *LocalLoginLimiter {
	return &LocalLoginLimiter{
		cache:  cache.New(window, window),
		max:    max,
		window: window,
	}
}

func (l *LocalLoginLimiter) Blocked(_ context.Context, key string) (bool, error) {
	v, ok := l.cache.Get(key)
	if !ok {
		return false, nil
	}
	count, _ := v.(int)
	return count >= l.max, nil
}

func (l *LocalLoginLimiter) Fail(_ context.Context, key string) error {
	// Add only succeeds for the first failure, which fixes the window start.
	if err := l.cache.Add(key, 1, l.window); err == nil {
		return nil
	}
	_, err := l.cache.IncrementInt(key, 1)
	if err != nil {
		// Expired between Add and IncrementInt.
		return l.cache.Add(key, 1, l.window)
	}
	return nil
}

func (l *LocalLoginLimiter) Reset(_ context.Context, key string) error {
	l.cache.Delete(key)
	return nil
}
