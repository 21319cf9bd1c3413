package locker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"matchbox.io/application/utils"
	"matchbox.io/infrastructure/logger"
)

const (
	defaultLockTTL   = 60 * time.Second
	defaultLockRetry = 50 * time.Millisecond
	lockKeyPrefix    = "matchbox:lock:"
)

// only the holder of the token may release the lock
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker serializes work across processes sharing one redis.
type RedisLocker struct {
	Client *redis.Client
	TTL    time.Duration
	Retry  time.Duration
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{Client: client, TTL: defaultLockTTL, Retry: defaultLockRetry}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	if l.Client == nil {
		return nil, errors.New("redis locker has no client")
	}
	redisKey := lockKeyPrefix + key
	token := utils.GenerateUULDString()
	ticker := time.NewTicker(l.Retry)
	defer ticker.Stop()

	for {
		acquired, err := l.Client.SetNX(ctx, redisKey, token, l.TTL).Result()
		if err != nil {
			logger.Error("redis error occured while acquiring lock", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			}, logger.LoggerOptions{
				Key:  "key",
				Data: redisKey,
			})
			return nil, err
		}
		if acquired {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// the request context may already be cancelled by now
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.Client, []string{redisKey}, token).Err(); err != nil {
			logger.Error("redis error occured while releasing lock", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			}, logger.LoggerOptions{
				Key:  "key",
				Data: redisKey,
			})
		}
	}, nil
}
