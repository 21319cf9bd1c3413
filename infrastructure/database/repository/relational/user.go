package relational

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"matchbox.io/application/repository"
	"matchbox.io/entities"
	"matchbox.io/infrastructure/logger"
)

const batchSize = 100

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.Error("gorm error occured while running FindByID", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		}, logger.LoggerOptions{
			Key:  "id",
			Data: id,
		})
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	parsed := user.ParseModel().(*entities.User)
	if err := r.DB.WithContext(ctx).Create(parsed).Error; err != nil {
		logger.Error("gorm error occured while running Create", logger.LoggerOptions{
			Key:  "error",
			Data: err.Error(),
		})
		return err
	}
	*user = *parsed
	return nil
}

func (r *UserRepository) update(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	result := r.DB.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("gorm error occured while updating user", logger.LoggerOptions{
			Key:  "error",
			Data: result.Error.Error(),
		}, logger.LoggerOptions{
			Key:  "id",
			Data: id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdatePhotos writes all three slots, and needPhoto when set, in one statement.
func (r *UserRepository) UpdatePhotos(ctx context.Context, id string, update entities.PhotoUpdate) error {
	fields := map[string]any{
		"photo1": update.Slots[0],
		"photo2": update.Slots[1],
		"photo3": update.Slots[2],
	}
	if update.NeedPhoto != nil {
		fields["need_photo"] = *update.NeedPhoto
	}
	return r.update(ctx, id, fields)
}

func (r *UserRepository) SetGender(ctx context.Context, id string, gender string) error {
	return r.update(ctx, id, map[string]any{"gender": gender})
}

func (r *UserRepository) ForEach(ctx context.Context, fn func(user *entities.User) error) error {
	var batch []entities.User
	result := r.DB.WithContext(ctx).Order("id").FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		for i := range batch {
			if err := fn(&batch[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return result.Error
}
