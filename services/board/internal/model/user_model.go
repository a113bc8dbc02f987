package model

import "time"

type UserModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	IsAdmin      bool      `gorm:"default:false"`
	IsAdvertiser bool      `gorm:"default:false"`
	Gender       *string   `gorm:"type:varchar(10)"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (UserModel) TableName() string {
	return "users"
}
