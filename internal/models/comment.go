package models

import "time"

// Comment represents a comment on a post. A comment with a ParentID is a
// reply; replies are only allowed one level deep.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	AuthorID  uint      `json:"-" gorm:"index;not null"`
	PostID    uint      `json:"post" gorm:"index;not null"`
	ParentID  *uint     `json:"parent" gorm:"index"`
	IsActive  bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Author *User    `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Post   *Post    `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Parent *Comment `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
}

// IsReply reports whether the comment answers another comment
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// CommentView is a comment enriched with derived counters for the caller
type CommentView struct {
	Comment
	Author       UserCompact   `json:"author"`
	LikesCount   int64         `json:"likes_count"`
	RepliesCount int64         `json:"replies_count"`
	IsLiked      bool          `json:"is_liked"`
	Replies      []CommentView `json:"replies,omitempty"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
	Parent  *uint  `json:"parent,omitempty"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

// CommentFilter narrows comment listings
type CommentFilter struct {
	Author     string
	Content    string
	HasReplies *bool
	Page       int
	PageSize   int
}
