package model

import "time"

type LikeModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	PostID    int64     `gorm:"not null;uniqueIndex:uq_likes_post_user"`
	UserID    int64     `gorm:"not null;uniqueIndex:uq_likes_post_user;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (LikeModel) TableName() string {
	return "likes"
}
