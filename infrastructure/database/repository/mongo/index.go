package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"matchbox.io/infrastructure/logger"
)

func (repo *MongoRepository[T]) FindByID(ctx context.Context, id string, opts ...FindOptions) (*T, error) {
	findOptions := options.FindOne()
	for _, opt := range opts {
		if opt.Projection != nil {
			findOptions.SetProjection(*opt.Projection)
		}
	}
	var result T
	err := repo.Model.FindOne(ctx, bson.M{"_id": id}, findOptions).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		logger.Error("mongo error occured while running FindByID", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		}, logger.LoggerOptions{
			Key:  "id",
			Data: id,
		})
		return nil, err
	}
	return &result, nil
}

func (repo *MongoRepository[T]) CreateOne(ctx context.Context, payload T) (*T, error) {
	parsed := payload.ParseModel()
	if _, err := repo.Model.InsertOne(ctx, parsed); err != nil {
		logger.Error("mongo error occured while running CreateOne", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return nil, err
	}
	created, ok := parsed.(*T)
	if !ok {
		return &payload, nil
	}
	return created, nil
}

// UpdateByID applies $set to one document and reports whether it matched.
func (repo *MongoRepository[T]) UpdateByID(ctx context.Context, id string, set bson.M) (bool, error) {
	result, err := repo.Model.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		logger.Error("mongo error occured while running UpdateByID", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		}, logger.LoggerOptions{
			Key:  "id",
			Data: id,
		})
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (repo *MongoRepository[T]) ForEach(ctx context.Context, filter bson.M, fn func(item *T) error, opts ...FindOptions) error {
	findOptions := options.Find()
	for _, opt := range opts {
		if opt.Sort != nil {
			findOptions.SetSort(*opt.Sort)
		}
		if opt.Skip != nil {
			findOptions.SetSkip(*opt.Skip)
		}
		if opt.Projection != nil {
			findOptions.SetProjection(*opt.Projection)
		}
	}
	cursor, err := repo.Model.Find(ctx, filter, findOptions)
	if err != nil {
		logger.Error("mongo error occured while running ForEach", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return err
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return err
		}
		if err := fn(&item); err != nil {
			return err
		}
	}
	return cursor.Err()
}
