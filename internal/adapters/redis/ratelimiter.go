// Package redis implements the sliding-window rate limiter described in
// spec.md §4.5. The algorithm is not copied from any teacher file (see
// DESIGN.md) — it is built fresh against go-redis/v9's sorted-set command
// surface, which the teacher already depends on for other purposes.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cashbridge/tokenvault/internal/ports"
	"github.com/cashbridge/tokenvault/pkg/mlog"
	"github.com/cashbridge/tokenvault/pkg/mredis"
)

// FailMode selects the behavior when the KV store is unreachable.
type FailMode int

const (
	// FailOpen lets the request through and logs SECURITY — the default
	// per spec.md §4.5.
	FailOpen FailMode = iota
	// FailClosed rejects the request when the limiter cannot reach Redis.
	FailClosed
)

// Limiter implements ports.RateLimiter as a Redis sorted-set sliding window.
type Limiter struct {
	conn     *mredis.Connection
	logger   mlog.Logger
	failMode FailMode
}

// New returns a Limiter bound to conn, logging SECURITY events through
// logger, with the given failure policy.
func New(conn *mredis.Connection, logger mlog.Logger, failMode FailMode) *Limiter {
	return &Limiter{conn: conn, logger: logger, failMode: failMode}
}

var _ ports.RateLimiter = (*Limiter)(nil)

// Allow implements the algorithm in spec.md §4.5:
//  1. windowStart = now - window.
//  2. Evict members scored below windowStart.
//  3. count = cardinality(key).
//  4. If count >= limit: deny, log SECURITY.
//  5. Else: add (score=now, member=fresh uuid + ":" + requestID), refresh
//     TTL, allow.
func (l *Limiter) Allow(ctx context.Context, key string, limit int, window time.Duration, requestID string) (ports.RateLimitResult, error) {
	client, err := l.conn.GetClient(ctx)
	if err != nil {
		return l.onUnreachable(err, limit, window)
	}

	now := time.Now().UTC()
	windowStart := now.Add(-window)

	if err := client.ZRemRangeByScore(ctx, key, "-inf", fmt.Sprintf("%d", windowStart.UnixNano())).Err(); err != nil {
		return l.onUnreachable(err, limit, window)
	}

	count, err := client.ZCard(ctx, key).Result()
	if err != nil {
		return l.onUnreachable(err, limit, window)
	}

	resetAt := now.Add(window)

	if int(count) >= limit {
		oldest, _ := client.ZRangeWithScores(ctx, key, 0, 0).Result()
		if len(oldest) > 0 {
			resetAt = time.Unix(0, int64(oldest[0].Score)).Add(window)
		}

		l.logger.Security("rate limit exceeded", "key", redactKey(key))

		return ports.RateLimitResult{
			Allowed:    false,
			Limit:      limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: time.Until(resetAt),
		}, nil
	}

	// member must be unique per request regardless of what the caller passes
	// as requestID: requestID is client-supplied (the X-Request-Id header),
	// and ZADD on an existing member only updates its score rather than
	// adding a new entry, which would let a client hold the window open
	// forever by resending the same id.
	member := uuid.NewString() + ":" + requestID

	if err := client.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member}).Err(); err != nil {
		return l.onUnreachable(err, limit, window)
	}

	if err := client.Expire(ctx, key, window).Err(); err != nil {
		return l.onUnreachable(err, limit, window)
	}

	remaining := limit - int(count) - 1

	return ports.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
		Remove: func(ctx context.Context) error {
			return client.ZRem(ctx, key, member).Err()
		},
	}, nil
}

// onUnreachable applies the configured failure policy when Redis cannot be
// reached, per spec.md §4.5's fail-open/fail-closed choice.
func (l *Limiter) onUnreachable(err error, limit int, window time.Duration) (ports.RateLimitResult, error) {
	l.logger.Security("rate limiter backend unreachable", "error", err.Error())

	if l.failMode == FailClosed {
		return ports.RateLimitResult{}, fmt.Errorf("rate limiter unavailable: %w", err)
	}

	return ports.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit,
		ResetAt:   time.Now().UTC().Add(window),
	}, nil
}

// redactKey strips the principal-identifying portion of a rate-limit key
// before it's logged, since keys embed IPs or user ids.
func redactKey(key string) string {
	return "rate_limit:<redacted>"
}
