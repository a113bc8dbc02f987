package model

import "time"

type MapClickModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	PostID    int64     `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
}

func (MapClickModel) TableName() string {
	return "map_clicks"
}

type CouponEventModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	PostID    int64     `gorm:"not null;index"`
	Code      string    `gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null"`
}

func (CouponEventModel) TableName() string {
	return "coupon_events"
}

type MapClickExportRow struct {
	ID        int64
	CreatedAt time.Time
	PostID    int64
	StoreName string
	Area      string
}

type CouponEventExportRow struct {
	ID        int64
	CreatedAt time.Time
	PostID    int64
	Code      string
	StoreName string
	Area      string
}
