package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"matchbox.io/infrastructure/logger"
)

func ConnectRedis(ctx context.Context, addr string, password string) (*redis.Client, error) {
	opt := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
		PoolSize: 10,
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("could not reach redis", logger.LoggerOptions{
			Key:  "addr",
			Data: addr,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		client.Close()
		return nil, err
	}
	logger.Info("connected to redis successfully")
	return client, nil
}
