package model

import "time"

// Subscription is the "subscriber follows channel" edge. There is no
// composite uniqueness constraint, so duplicate edges can exist and
// count queries report the raw edge count.
type Subscription struct {
	ID           string `gorm:"primaryKey"`
	SubscriberID string `gorm:"index;not null"`
	ChannelID    string `gorm:"index;not null"`
	CreatedAt    time.Time
}
