package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/trackmyoffer/bff/pkg/database"
	"go.uber.org/zap"
)

// ErrLockTimeout is returned when a lock could not be taken within the wait budget
var ErrLockTimeout = errors.New("timed out waiting for lock")

const (
	defaultLockTTL  = 15 * time.Second
	defaultLockWait = 12 * time.Second
	lockRetryDelay  = 50 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a per-key mutual exclusion lock shared by every BFF instance
type RedisLocker struct {
	redis  *database.Redis
	prefix string
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

// NewRedisLocker creates a lock namespace. ttl bounds how long a crashed holder blocks others.
func NewRedisLocker(redis *database.Redis, prefix string, ttl, wait time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &RedisLocker{
		redis:  redis,
		prefix: prefix,
		ttl:    ttl,
		wait:   wait,
		logger: logger,
	}
}

// Acquire takes the lock on key, polling until it is free
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := fmt.Sprintf("lock:%s:%s", l.prefix, key)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(lockRetryDelay)
	defer ticker.Stop()

	for {
		ok, err := l.redis.Client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		if ok {
			return func() { l.release(redisKey, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) release(redisKey, token string) {
	// The caller's context may already be done; release must still reach redis.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.redis.Client, []string{redisKey}, token).Err(); err != nil {
		l.logger.Warn("failed to release lock", zap.String("key", redisKey), zap.Error(err))
	}
}
