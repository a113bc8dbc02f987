package model

import "time"

type PostModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	UserID        int64     `gorm:"not null;index"`
	ImagePath     string    `gorm:"type:varchar(500);not null"`
	Caption       string    `gorm:"type:text;not null"`
	PriceRange    string    `gorm:"type:varchar(20);not null"`
	Area          string    `gorm:"type:varchar(100);not null"`
	StoreName     string    `gorm:"type:varchar(50);not null"`
	School        *string   `gorm:"type:varchar(100);index"`
	GoogleMapsURL *string   `gorm:"column:google_maps_url;type:varchar(300)"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index"`
}

func (PostModel) TableName() string {
	return "posts"
}

// PostSummaryRow is the scan target of the feed query.
type PostSummaryRow struct {
	PostModel
	Username  string
	LikeCount int64
}

type SchoolCountRow struct {
	School    string
	PostCount int64
}
