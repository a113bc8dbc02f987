package persistent

import (
	"context"
	"errors"
	"fmt"

	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error)
	UpdatePrivileges(ctx context.Context, id int64, isAdmin, isAdvertiser bool) error
	UpdateUsername(ctx context.Context, id int64, username string) error
	EnsureAdvertiser(ctx context.Context, id int64, username string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	userModel := ToUserModel(user)
	if err := r.db.WithContext(ctx).Create(userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", entity.ErrUsernameTaken, user.Username)
		}
		return err
	}
	*user = *ToUserEntity(userModel)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var userModel model.UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error; err != nil {
		return nil, translateError(err)
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.UserModel{}).Where("username = ?", username)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *userRepository) UpdatePrivileges(ctx context.Context, id int64, isAdmin, isAdvertiser bool) error {
	res := r.db.WithContext(ctx).Model(&model.UserModel{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_admin": isAdmin, "is_advertiser": isAdvertiser})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateUsername(ctx context.Context, id int64, username string) error {
	res := r.db.WithContext(ctx).Model(&model.UserModel{}).Where("id = ?", id).Update("username", username)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return entity.ErrUsernameTaken
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

// EnsureAdvertiser inserts the advertiser account when missing and moves
// the id sequence past it so pseudo-users never collide with it.
func (r *userRepository) EnsureAdvertiser(ctx context.Context, id int64, username string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		advertiser := &model.UserModel{ID: id, Username: username, IsAdmin: true, IsAdvertiser: true}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(advertiser).Error; err != nil {
			return err
		}
		return tx.Exec("SELECT setval(pg_get_serial_sequence('users', 'id'), GREATEST((SELECT MAX(id) FROM users), 1))").Error
	})
}
