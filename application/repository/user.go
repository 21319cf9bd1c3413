package repository

import (
	"context"
	"errors"

	"matchbox.io/entities"
)

var ErrNotFound = errors.New("record not found")

// UserRepository persists the photo state of users. FindByID returns nil
// without an error when the user does not exist.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
	UpdatePhotos(ctx context.Context, id string, update entities.PhotoUpdate) error
	SetGender(ctx context.Context, id string, gender string) error
	ForEach(ctx context.Context, fn func(user *entities.User) error) error
}
