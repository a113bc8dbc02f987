package persistent

import (
	"context"
	"errors"

	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/model"

	"gorm.io/gorm"
)

type LikeRepository interface {
	Toggle(ctx context.Context, postID, userID int64) (entity.LikeState, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)
	LikedPostIDs(ctx context.Context, userID int64) ([]int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle removes the (post, user) like if present, otherwise inserts it,
// and counts the post likes inside the same transaction. A duplicate
// insert from a concurrent request is reported as liked.
func (r *likeRepository) Toggle(ctx context.Context, postID, userID int64) (entity.LikeState, error) {
	var state entity.LikeState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&model.LikeModel{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			state.Liked = false
		} else {
			if err := insertLike(tx, postID, userID); err != nil {
				return err
			}
			state.Liked = true
		}

		return tx.Model(&model.LikeModel{}).Where("post_id = ?", postID).Count(&state.LikeCount).Error
	})
	if err != nil {
		return entity.LikeState{}, err
	}
	return state, nil
}

// insertLike adds the (post, user) row. An existing row is not an error.
func insertLike(tx *gorm.DB, postID, userID int64) error {
	// nested transaction = savepoint, keeps tx usable after a unique violation
	err := tx.Transaction(func(inner *gorm.DB) error {
		return inner.Create(&model.LikeModel{PostID: postID, UserID: userID}).Error
	})
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	return nil
}

func (r *likeRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LikeModel{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *likeRepository) LikedPostIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.LikeModel{}).Where("user_id = ?", userID).Pluck("post_id", &ids).Error
	return ids, err
}
