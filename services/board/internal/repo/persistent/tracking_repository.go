package persistent

import (
	"context"

	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/model"

	"gorm.io/gorm"
)

type TrackingRepository interface {
	CreateMapClick(ctx context.Context, postID int64) error
	CreateCouponEvent(ctx context.Context, postID int64, code string) error
	MapClickRows(ctx context.Context) ([]entity.MapClickRow, error)
	CouponEventRows(ctx context.Context) ([]entity.CouponEventRow, error)
}

type trackingRepository struct {
	db *gorm.DB
}

func NewTrackingRepository(db *gorm.DB) TrackingRepository {
	return &trackingRepository{db: db}
}

func (r *trackingRepository) CreateMapClick(ctx context.Context, postID int64) error {
	return r.db.WithContext(ctx).Create(&model.MapClickModel{PostID: postID}).Error
}

func (r *trackingRepository) CreateCouponEvent(ctx context.Context, postID int64, code string) error {
	return r.db.WithContext(ctx).Create(&model.CouponEventModel{PostID: postID, Code: code}).Error
}

func (r *trackingRepository) MapClickRows(ctx context.Context) ([]entity.MapClickRow, error) {
	var rows []model.MapClickExportRow
	err := r.db.WithContext(ctx).Table("map_clicks").
		Select("map_clicks.id, map_clicks.created_at, map_clicks.post_id, posts.store_name, posts.area").
		Joins("JOIN posts ON posts.id = map_clicks.post_id").
		Order("map_clicks.created_at DESC").Order("map_clicks.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]entity.MapClickRow, len(rows))
	for i, row := range rows {
		result[i] = entity.MapClickRow{
			ID:        row.ID,
			CreatedAt: row.CreatedAt,
			PostID:    row.PostID,
			StoreName: row.StoreName,
			Area:      row.Area,
		}
	}
	return result, nil
}

func (r *trackingRepository) CouponEventRows(ctx context.Context) ([]entity.CouponEventRow, error) {
	var rows []model.CouponEventExportRow
	err := r.db.WithContext(ctx).Table("coupon_events").
		Select("coupon_events.id, coupon_events.created_at, coupon_events.post_id, coupon_events.code, posts.store_name, posts.area").
		Joins("JOIN posts ON posts.id = coupon_events.post_id").
		Order("coupon_events.created_at DESC").Order("coupon_events.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]entity.CouponEventRow, len(rows))
	for i, row := range rows {
		result[i] = entity.CouponEventRow{
			ID:        row.ID,
			CreatedAt: row.CreatedAt,
			PostID:    row.PostID,
			Code:      row.Code,
			StoreName: row.StoreName,
			Area:      row.Area,
		}
	}
	return result, nil
}
