package httpapi

import (
	"context"
	"log/slog"
	"time"

	"procurement-platform/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EntityLocker serializes transition requests for one entity across API
// instances. The workflow engine's version check is the correctness
// guarantee; the lock only reduces wasted work and 409 responses when two
// instances race on the same entity.
type EntityLocker struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewEntityLocker(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *EntityLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &EntityLocker{rdb: rdb, ttl: ttl, log: log}
}

// WithLock runs fn while holding the entity lock. A redis outage degrades to
// running fn unlocked; the version check still protects the data.
func (l *EntityLocker) WithLock(ctx context.Context, key string, fn func() error) error {
	lockKey := "lock:entity:" + key
	token := uuid.NewString()

	acquired, err := utils.AcquireEntityLock(ctx, l.rdb, lockKey, token, l.ttl)
	if err != nil {
		l.log.Warn("entity lock unavailable, proceeding unlocked", "key", lockKey, "err", err)
		return fn()
	}
	if !acquired {
		// Busy-holder: brief retry before giving up to the version check.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
		acquired, err = utils.AcquireEntityLock(ctx, l.rdb, lockKey, token, l.ttl)
		if err != nil || !acquired {
			return fn()
		}
	}
	defer func() {
		if err := utils.ReleaseEntityLock(context.WithoutCancel(ctx), l.rdb, lockKey, token); err != nil {
			l.log.Warn("entity lock release failed", "key", lockKey, "err", err)
		}
	}()
	return fn()
}
