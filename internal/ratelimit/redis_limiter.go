// Package ratelimit implements a sliding-window request limiter on Redis sorted sets.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pagecrafter/internal/config"
	"pagecrafter/internal/port"
)

const keyPrefix = "pagecrafter:ratelimit:"

// NewClient creates a Redis client from cfg.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// SlidingWindow allows at most limit requests per key within any window.
type SlidingWindow struct {
	rdb    redis.UniversalClient
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewSlidingWindow creates a limiter backed by rdb.
func NewSlidingWindow(rdb redis.UniversalClient, limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{rdb: rdb, limit: limit, window: window, now: time.Now}
}

var _ port.RateLimiter = (*SlidingWindow)(nil)

// Allow records a request for key and reports whether it fits in the window.
// A rejected request does not consume budget.
func (l *SlidingWindow) Allow(ctx context.Context, key string) (port.RateDecision, error) {
	now := l.now()
	nowMs := now.UnixMilli()
	windowStart := nowMs - l.window.Milliseconds()
	redisKey := keyPrefix + key
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	var count *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("(%d", windowStart))
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowMs), Member: member})
		count = pipe.ZCard(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return port.RateDecision{}, fmt.Errorf("ratelimit.Allow: %w", err)
	}

	used := int(count.Val())
	if used <= l.limit {
		return port.RateDecision{Allowed: true, Remaining: l.limit - used}, nil
	}

	if err := l.rdb.ZRem(ctx, redisKey, member).Err(); err != nil {
		return port.RateDecision{}, fmt.Errorf("ratelimit.Allow: releasing slot: %w", err)
	}
	return port.RateDecision{Allowed: false, RetryAfter: l.retryAfter(ctx, redisKey, nowMs)}, nil
}

// retryAfter is the time until the oldest request in the window expires.
func (l *SlidingWindow) retryAfter(ctx context.Context, redisKey string, nowMs int64) time.Duration {
	oldest, err := l.rdb.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
	if err != nil || len(oldest) == 0 {
		return l.window
	}
	wait := time.Duration(int64(oldest[0].Score)+l.window.Milliseconds()-nowMs) * time.Millisecond
	if wait < time.Second {
		return time.Second
	}
	return wait
}
