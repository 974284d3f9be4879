package model

import "time"

// User is the identity record. Username is stored lowercase so
// lookups and the unique index are case-insensitive.
type User struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"unique;not null"`
	FullName     string `gorm:"not null"`
	Avatar       string `gorm:"not null"`
	CoverImage   string
	PasswordHash string `gorm:"not null"`

	// The single active refresh token. Nil means the user has no
	// session and any presented refresh token is dead.
	RefreshToken *string

	// Video ids in interaction order, most recent last. Duplicates
	// are allowed.
	WatchHistory StringSlice `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicUser is the projection of a User that may leave the server.
// The password hash and refresh token never cross this boundary.
type PublicUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
	}
}

// VideoOwner is the minimal owner projection nested inside watch
// history entries.
type VideoOwner struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

func (u *User) Owner() VideoOwner {
	return VideoOwner{
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}

// ChannelProfile is a User viewed as a subscription target, extended
// with the derived social-graph fields.
type ChannelProfile struct {
	PublicUser
	SubscribersCount          int64 `json:"subscribersCount"`
	ChannelsSubscribedToCount int64 `json:"channelsSubscribedToCount"`
	IsSubscribed              bool  `json:"isSubscribed"`
}
