package service

import (
	"context"
	"fmt"
	"time"

	"LinkGuard-Backend/internal/config"
	"LinkGuard-Backend/internal/repository"
)

// RedirectionLimiter throttles redirections per hash over a sliding time
// window derived from stored clicks. It is a soft throttle: the count and
// the eventual click insert are not transactional, so a concurrent burst
// may admit slightly more than the limit within one window.
type RedirectionLimiter struct {
	storage   repository.Storage
	limit     int64
	timeFrame time.Duration
}

// NewRedirectionLimiter creates a limiter from configuration.
func NewRedirectionLimiter(storage repository.Storage, cfg *config.RateLimiter) *RedirectionLimiter {
	return &RedirectionLimiter{
		storage:   storage,
		limit:     cfg.Limit,
		timeFrame: cfg.TimeFrame,
	}
}

// IsOverLimit reports whether the hash has exhausted its redirection
// budget within the current window: with limit N, the first N redirects
// in a window are admitted and the next one is rejected. Pure read, no
// mutation.
func (l *RedirectionLimiter) IsOverLimit(ctx context.Context, hash string) (bool, error) {
	count, err := l.storage.CountClicks(ctx, hash, time.Now().Add(-l.timeFrame))
	if err != nil {
		return false, fmt.Errorf("failed to count clicks: %w", err)
	}

	return count >= l.limit, nil
}
