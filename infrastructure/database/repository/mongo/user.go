package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"matchbox.io/application/repository"
	"matchbox.io/entities"
)

// UserRepository stores users in the Users collection keyed by _id.
type UserRepository struct {
	repo MongoRepository[entities.User]
}

func NewUserRepository(collection *mongo.Collection) *UserRepository {
	return &UserRepository{repo: MongoRepository[entities.User]{Model: collection}}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.repo.FindByID(ctx, id)
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	created, err := r.repo.CreateOne(ctx, *user)
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

func (r *UserRepository) set(ctx context.Context, id string, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	matched, err := r.repo.UpdateByID(ctx, id, fields)
	if err != nil {
		return err
	}
	if !matched {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePhotos(ctx context.Context, id string, update entities.PhotoUpdate) error {
	fields := bson.M{
		"photo1": update.Slots[0],
		"photo2": update.Slots[1],
		"photo3": update.Slots[2],
	}
	if update.NeedPhoto != nil {
		fields["needPhoto"] = *update.NeedPhoto
	}
	return r.set(ctx, id, fields)
}

func (r *UserRepository) SetGender(ctx context.Context, id string, gender string) error {
	return r.set(ctx, id, bson.M{"gender": gender})
}

func (r *UserRepository) ForEach(ctx context.Context, fn func(user *entities.User) error) error {
	var sort interface{} = bson.D{{Key: "_id", Value: 1}}
	return r.repo.ForEach(ctx, bson.M{}, fn, FindOptions{Sort: &sort})
}
