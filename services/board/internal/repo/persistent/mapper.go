package persistent

import (
	"errors"
	"strings"

	"kuchikomi/services/board/internal/entity"
	"kuchikomi/services/board/internal/model"

	"gorm.io/gorm"
)

func ToUserEntity(m *model.UserModel) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:           m.ID,
		Username:     m.Username,
		IsAdmin:      m.IsAdmin,
		IsAdvertiser: m.IsAdvertiser,
		Gender:       fromNullable(m.Gender),
		CreatedAt:    m.CreatedAt,
	}
}

func ToUserModel(e *entity.User) *model.UserModel {
	if e == nil {
		return nil
	}

	return &model.UserModel{
		ID:           e.ID,
		Username:     e.Username,
		IsAdmin:      e.IsAdmin,
		IsAdvertiser: e.IsAdvertiser,
		Gender:       toNullable(e.Gender),
		CreatedAt:    e.CreatedAt,
	}
}

func ToPostEntity(m *model.PostModel) *entity.Post {
	if m == nil {
		return nil
	}

	return &entity.Post{
		ID:            m.ID,
		UserID:        m.UserID,
		ImagePath:     m.ImagePath,
		Caption:       m.Caption,
		PriceRange:    m.PriceRange,
		Area:          m.Area,
		StoreName:     m.StoreName,
		School:        fromNullable(m.School),
		GoogleMapsURL: fromNullable(m.GoogleMapsURL),
		CreatedAt:     m.CreatedAt,
	}
}

func ToPostModel(e *entity.Post) *model.PostModel {
	if e == nil {
		return nil
	}

	return &model.PostModel{
		ID:            e.ID,
		UserID:        e.UserID,
		ImagePath:     e.ImagePath,
		Caption:       e.Caption,
		PriceRange:    e.PriceRange,
		Area:          e.Area,
		StoreName:     e.StoreName,
		School:        toNullable(e.School),
		GoogleMapsURL: toNullable(e.GoogleMapsURL),
		CreatedAt:     e.CreatedAt,
	}
}

func ToPostSummary(row *model.PostSummaryRow) *entity.PostSummary {
	return &entity.PostSummary{
		Post:      *ToPostEntity(&row.PostModel),
		Username:  row.Username,
		LikeCount: row.LikeCount,
	}
}

// NULL and empty strings are the same "absent" value in the domain.
func toNullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func fromNullable(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.ErrNotFound
	}
	return err
}
