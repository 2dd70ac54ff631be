package service

import (
	"context"
	"errors"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// SessionTracker counts live test connections across server instances.
type SessionTracker struct {
	rdb redis.Cmdable
}

// NewSessionTracker creates a SessionTracker. rdb may be nil, which disables counting.
func NewSessionTracker(rdb redis.Cmdable) *SessionTracker {
	return &SessionTracker{rdb: rdb}
}

// Started records one opened test.
func (t *SessionTracker) Started(ctx context.Context) error {
	if t.rdb == nil {
		return nil
	}
	return t.rdb.Incr(ctx, config.CacheKey.ActiveTestSessionsKey()).Err()
}

// Ended records one closed test. The counter never goes below zero.
func (t *SessionTracker) Ended(ctx context.Context) error {
	if t.rdb == nil {
		return nil
	}
	key := config.CacheKey.ActiveTestSessionsKey()
	n, err := t.rdb.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n < 0 {
		return t.rdb.Set(ctx, key, 0, 0).Err()
	}
	return nil
}

// Active returns the number of live tests.
func (t *SessionTracker) Active(ctx context.Context) (int64, error) {
	if t.rdb == nil {
		return 0, nil
	}
	n, err := t.rdb.Get(ctx, config.CacheKey.ActiveTestSessionsKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
