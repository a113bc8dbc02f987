package entity

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNoIdentity        = errors.New("no session identity")
	ErrNotSponsored      = errors.New("post is not sponsored")
	ErrInvalidPassword   = errors.New("invalid privilege password")
	ErrEmptyPassword     = errors.New("empty privilege password")
	ErrAdvertiserMissing = errors.New("advertiser account missing")
	ErrPreviousMissing   = errors.New("previous identity missing")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrUpload            = errors.New("image upload failed")
)
