package entity

import "time"

// AdvertiserUsername is the display name of the sponsored-content account.
const AdvertiserUsername = "【広告】"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	IsAdmin      bool      `json:"is_admin"`
	IsAdvertiser bool      `json:"is_advertiser"`
	Gender       string    `json:"gender,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
