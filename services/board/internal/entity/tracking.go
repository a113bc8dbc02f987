package entity

import "time"

type MapClick struct {
	ID        int64
	PostID    int64
	CreatedAt time.Time
}

type CouponEvent struct {
	ID        int64
	PostID    int64
	Code      string
	CreatedAt time.Time
}

// MapClickRow is a map click joined with its post for export.
type MapClickRow struct {
	ID        int64
	CreatedAt time.Time
	PostID    int64
	StoreName string
	Area      string
}

// CouponEventRow is a coupon view joined with its post for export.
type CouponEventRow struct {
	ID        int64
	CreatedAt time.Time
	PostID    int64
	Code      string
	StoreName string
	Area      string
}
