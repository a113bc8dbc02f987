package persistent

import (
	"context"
	"strings"

	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/model"

	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	GetByID(ctx context.Context, id int64) (*entity.Post, error)
	List(ctx context.Context, filter entity.PostFilter, order entity.PostOrder, limit int) ([]*entity.PostSummary, error)
	Recent(ctx context.Context, limit int) ([]*entity.Post, error)
	UpdateDetails(ctx context.Context, post *entity.Post) error
	DeleteWithLikes(ctx context.Context, id int64) error
	SchoolCounts(ctx context.Context) ([]entity.SchoolCount, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	postModel := ToPostModel(post)
	if err := r.db.WithContext(ctx).Create(postModel).Error; err != nil {
		return err
	}
	*post = *ToPostEntity(postModel)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*entity.Post, error) {
	var postModel model.PostModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&postModel).Error; err != nil {
		return nil, translateError(err)
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) List(ctx context.Context, filter entity.PostFilter, order entity.PostOrder, limit int) ([]*entity.PostSummary, error) {
	query := r.db.WithContext(ctx).Table("posts").
		Select("posts.*, users.username AS username, COUNT(likes.id) AS like_count").
		Joins("JOIN users ON users.id = posts.user_id").
		Joins("LEFT JOIN likes ON likes.post_id = posts.id").
		Group("posts.id, users.username")

	if filter.Area != "" {
		query = query.Where(`posts.area LIKE ? ESCAPE '\'`, containsPattern(filter.Area))
	}
	if filter.StoreName != "" {
		query = query.Where(`posts.store_name LIKE ? ESCAPE '\'`, containsPattern(filter.StoreName))
	}
	if filter.PriceRange != "" {
		query = query.Where("posts.price_range = ?", filter.PriceRange)
	}
	if filter.School != "" {
		query = query.Where("posts.school = ?", filter.School)
	}
	if filter.UserID != 0 {
		query = query.Where("posts.user_id = ?", filter.UserID)
	}

	switch order {
	case entity.OrderMostLiked:
		query = query.Order("like_count DESC").Order("posts.created_at DESC").Order("posts.id DESC")
	default:
		query = query.Order("posts.created_at DESC").Order("posts.id DESC")
	}

	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.PostSummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	posts := make([]*entity.PostSummary, len(rows))
	for i := range rows {
		posts[i] = ToPostSummary(&rows[i])
	}
	return posts, nil
}

func (r *postRepository) Recent(ctx context.Context, limit int) ([]*entity.Post, error) {
	var postModels []model.PostModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&postModels).Error; err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

// UpdateDetails writes the editable text fields, including cleared ones.
func (r *postRepository) UpdateDetails(ctx context.Context, post *entity.Post) error {
	postModel := ToPostModel(post)
	res := r.db.WithContext(ctx).Model(&model.PostModel{ID: post.ID}).
		Select("store_name", "area", "caption", "price_range", "school", "google_maps_url").
		Updates(postModel)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *postRepository) DeleteWithLikes(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&model.LikeModel{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.PostModel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return entity.ErrNotFound
		}
		return nil
	})
}

func (r *postRepository) SchoolCounts(ctx context.Context) ([]entity.SchoolCount, error) {
	var rows []model.SchoolCountRow
	err := r.db.WithContext(ctx).Table("posts").
		Select("school, COUNT(id) AS post_count").
		Where("school IS NOT NULL AND school <> ''").
		Group("school").
		Order("post_count DESC").Order("school ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]entity.SchoolCount, len(rows))
	for i, row := range rows {
		counts[i] = entity.SchoolCount{School: row.School, PostCount: row.PostCount}
	}
	return counts, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
