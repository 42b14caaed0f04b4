package models

import "time"

// Profile wraps a User with public profile data. Every user owns exactly one.
type Profile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"-" gorm:"uniqueIndex;not null"`
	Bio       string    `json:"bio" gorm:"size:500"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`

	FollowersCount int64 `json:"followers_count" gorm:"-"`
	FollowingCount int64 `json:"following_count" gorm:"-"`
}

// Follow is a directed edge from a user to another user's profile
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following;not null"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following;not null"`
	CreatedAt   time.Time `json:"created_at"`

	Follower  *User    `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following *Profile `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

// UpdateProfileRequest defines the request body for updating the own profile
type UpdateProfileRequest struct {
	Bio   *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Image *string `json:"image,omitempty" validate:"omitempty,max=500"`
}
