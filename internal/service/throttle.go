package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginKeyPrefix = "marketplace:login-failures:"

// LoginThrottle counts failed logins in redis. A key is blocked once it has
// collected max failures inside window; the window starts at the first
// failure.
type LoginThrottle struct {
	rdb    *redis.Client
	max    int64
	window time.Duration
}

func NewLoginThrottle(redisClient *redis.Client, max int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{
		rdb:    redisClient,
		max:    int64(max),
		window: window,
	}
}

func (s *LoginThrottle) Blocked(ctx context.Context, key string) (bool, error) {
	count, err := s.rdb.Get(ctx, loginKeyPrefix+key).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= s.max, nil
}

func (s *LoginThrottle) Fail(ctx context.Context, key string) error {
	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, loginKeyPrefix+key)
	pipe.ExpireNX(ctx, loginKeyPrefix+key, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return incr.Err()
}

func (s *LoginThrottle) Reset(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, loginKeyPrefix+key).Err()
}
