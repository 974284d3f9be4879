package model

import "time"

type Video struct {
	ID          string `gorm:"primaryKey"`
	OwnerID     string `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Description string
	FileKey     string `gorm:"not null"`
	ThumbKey    string
	Duration    float64
	Views       int64 `gorm:"default:0"`
	CreatedAt   time.Time
}

// VideoWithOwner is a watch history entry: the video plus the minimal
// projection of the user that owns it.
type VideoWithOwner struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	FileKey     string     `json:"fileKey"`
	ThumbKey    string     `json:"thumbKey,omitempty"`
	Duration    float64    `json:"duration"`
	Views       int64      `json:"views"`
	Owner       VideoOwner `json:"owner"`
}
