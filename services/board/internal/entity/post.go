package entity

import "time"

type Post struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	ImagePath     string    `json:"image_path"`
	Caption       string    `json:"caption"`
	PriceRange    string    `json:"price_range"`
	Area          string    `json:"area"`
	StoreName     string    `json:"store_name"`
	School        string    `json:"school,omitempty"`
	GoogleMapsURL string    `json:"google_maps_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// PostSummary is a feed row: the post with its owner name and like count.
type PostSummary struct {
	Post
	Username  string `json:"username"`
	LikeCount int64  `json:"like_count"`
}

// PostFilter narrows a post listing. Empty fields do not filter.
type PostFilter struct {
	Area       string
	StoreName  string
	PriceRange string
	School     string
	UserID     int64
}

// PostOrder selects how listings are sorted.
type PostOrder int

const (
	OrderNewest PostOrder = iota
	OrderMostLiked
)

// SchoolCount is an affiliation tag in use with its number of posts.
type SchoolCount struct {
	School    string `json:"school"`
	PostCount int64  `json:"post_count"`
}

type Like struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeState is the result of a like toggle.
type LikeState struct {
	Liked     bool  `json:"is_liked"`
	LikeCount int64 `json:"like_count"`
}
