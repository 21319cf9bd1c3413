package datastore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"matchbox.io/infrastructure/logger"
)

const UserCollection = "Users"

func ConnectMongo(ctx context.Context, url string, name string) (*mongo.Database, error) {
	if url == "" {
		logger.Error("mongo url missing")
		return nil, errors.New("DB_URL is required for the mongo driver")
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(url)
	clientOpts.SetMinPoolSize(5)
	clientOpts.SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Warning("an error occured while starting the database", logger.LoggerOptions{Key: "error", Data: err})
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Warning("mongodb ping failed", logger.LoggerOptions{Key: "error", Data: err})
		return nil, err
	}

	db := client.Database(name)
	setUpIndexes(ctx, db)

	logger.Info("connected to mongodb successfully")
	return db, nil
}

// Set up the indexes for the database
func setUpIndexes(ctx context.Context, db *mongo.Database) {
	users := db.Collection(UserCollection)
	if _, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{{
		Keys:    bson.D{{Key: "needPhoto", Value: 1}},
		Options: options.Index(),
	}}); err != nil {
		logger.Warning("could not create mongodb indexes", logger.LoggerOptions{Key: "error", Data: err})
		return
	}

	logger.Info("mongodb indexes set up successfully")
}
