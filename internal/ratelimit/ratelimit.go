// Package ratelimit wraps ulule/limiter with the rolling windows the
// directory needs: a short window for interaction toggles and a longer one
// for submissions.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Limiter answers "has this key exceeded its window?" for one operation kind.
type Limiter struct {
	inner *limiter.Limiter
}

// New creates a limiter allowing count operations per period per key.
func New(count int64, period time.Duration) *Limiter {
	rate := limiter.Rate{
		Period: period,
		Limit:  count,
	}
	return &Limiter{inner: limiter.New(memory.NewStore(), rate)}
}

// NewToggleLimiter allows 5 toggle operations per user per 10 seconds.
func NewToggleLimiter() *Limiter {
	return New(5, 10*time.Second)
}

// NewSubmitLimiter allows 5 submissions per IP fingerprint per 10 minutes.
func NewSubmitLimiter() *Limiter {
	return New(5, 10*time.Minute)
}

// Allow consumes one slot for key and reports whether the operation may
// proceed. A false result means the window is exhausted and the caller must
// fail with a rate-limit error rather than silently dropping the operation.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	lctx, err := l.inner.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("rate limiter failed: %w", err)
	}
	return !lctx.Reached, nil
}
