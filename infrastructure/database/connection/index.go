package connection

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
	"matchbox.io/infrastructure/database/connection/cache"
	"matchbox.io/infrastructure/database/connection/datastore"
	"matchbox.io/infrastructure/env"
	"matchbox.io/infrastructure/logger"
)

// Connections holds whichever stores the configuration selected. Exactly one
// of SQL and Mongo is set; Redis is optional.
type Connections struct {
	SQL   *gorm.DB
	Mongo *mongo.Database
	Redis *redis.Client
}

func ConnectToDatabase(ctx context.Context, cfg env.Config) (*Connections, error) {
	conns := &Connections{}
	var err error
	switch cfg.DBDriver {
	case "mongo", "mongodb":
		conns.Mongo, err = datastore.ConnectMongo(ctx, cfg.DBURL, cfg.DBName)
	default:
		conns.SQL, err = datastore.ConnectRelational(cfg.DBDriver, cfg.DBURL, cfg.Env != "prod")
	}
	if err != nil {
		return nil, err
	}

	if cfg.RedisAddr != "" {
		conns.Redis, err = cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			conns.Close(ctx)
			return nil, err
		}
	}
	return conns, nil
}

func (c *Connections) Close(ctx context.Context) {
	var errs []error
	if c.SQL != nil {
		if sqlDB, err := c.SQL.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if c.Mongo != nil {
		errs = append(errs, c.Mongo.Client().Disconnect(ctx))
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warning("error closing database connections", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
	}
}
