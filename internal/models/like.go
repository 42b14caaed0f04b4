package models

import (
	"fmt"
	"time"
)

// TargetType tags the kind of entity a generic reference points at
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
	TargetProfile TargetType = "profile"
)

// Valid reports whether t is one of the known target tags
func (t TargetType) Valid() bool {
	switch t {
	case TargetPost, TargetComment, TargetProfile:
		return true
	}
	return false
}

// Likeable reports whether t can be the target of a Like
func (t TargetType) Likeable() bool {
	return t == TargetPost || t == TargetComment
}

// TargetRef is a (type, id) pair referring to a Post, Comment or Profile.
// It is not a foreign key; the referenced row may no longer exist.
type TargetRef struct {
	Type TargetType
	ID   uint
}

func (r TargetRef) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

// Like is a user's like on a post or comment
type Like struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	UserID     uint       `json:"user_id" gorm:"index;uniqueIndex:idx_like_user_target;not null"`
	TargetType TargetType `json:"target_type" gorm:"size:10;uniqueIndex:idx_like_user_target;index:idx_like_target;not null"`
	TargetID   uint       `json:"target_id" gorm:"uniqueIndex:idx_like_user_target;index:idx_like_target;not null"`
	CreatedAt  time.Time  `json:"created_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Target returns the generic reference of the liked entity
func (l *Like) Target() TargetRef {
	return TargetRef{Type: l.TargetType, ID: l.TargetID}
}
