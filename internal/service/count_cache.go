package service

import (
	"context"
	"strconv"
	"time"

	"github.com/classpad/classpad-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// studentCountTTL bounds how stale a cached enrollment count can get if an
// invalidation is lost; the count is always recomputable from SQL.
const studentCountTTL = 5 * time.Minute

// countCache reads class enrollment counts through Redis. Shared by the
// class and enrollment services so both sides see one invalidation point.
type countCache struct {
	classes ClassStore
	rdb     *redis.Client
}

// Get returns the enrollment count for a class, consulting the cache first.
// Cache failures fall through to the database silently.
func (cc *countCache) Get(ctx context.Context, classID int) (int, error) {
	key := config.CacheKey.ClassStudentCountKey(classID)
	if cc.rdb != nil {
		if cached, err := cc.rdb.Get(ctx, key).Result(); err == nil {
			if n, convErr := strconv.Atoi(cached); convErr == nil {
				return n, nil
			}
		}
	}

	count, err := cc.classes.StudentCount(ctx, classID)
	if err != nil {
		return 0, err
	}
	if cc.rdb != nil {
		_ = cc.rdb.Set(ctx, key, strconv.Itoa(count), studentCountTTL).Err()
	}
	return count, nil
}

// Invalidate drops the cached count after a membership change.
func (cc *countCache) Invalidate(ctx context.Context, classID int) {
	if cc.rdb == nil {
		return
	}
	_ = cc.rdb.Del(ctx, config.CacheKey.ClassStudentCountKey(classID)).Err()
}
