package models

import "time"

// Verb is the action a notification reports
type Verb string

const (
	VerbFollowed     Verb = "followed"
	VerbLikedPost    Verb = "liked_post"
	VerbLikedComment Verb = "liked_comment"
	VerbCommented    Verb = "commented"
	VerbReplied      Verb = "replied"
)

// Valid reports whether v is a known verb
func (v Verb) Valid() bool {
	switch v {
	case VerbFollowed, VerbLikedPost, VerbLikedComment, VerbCommented, VerbReplied:
		return true
	}
	return false
}

// Notification tells Recipient that Actor did Verb on a target.
// (recipient, actor, verb, target_type, target_id) is kept unique by the
// creation policy rather than by a database constraint.
type Notification struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	RecipientID uint       `json:"-" gorm:"index:idx_notification_tuple,priority:1;index:idx_notification_recipient_read,priority:1;not null"`
	ActorID     uint       `json:"-" gorm:"index:idx_notification_tuple,priority:2;index;not null"`
	Verb        Verb       `json:"verb" gorm:"size:20;index:idx_notification_tuple,priority:3;not null"`
	TargetType  TargetType `json:"target_type" gorm:"size:10;index:idx_notification_tuple,priority:4;not null"`
	TargetID    uint       `json:"target_id" gorm:"index:idx_notification_tuple,priority:5;not null"`
	IsRead      bool       `json:"is_read" gorm:"default:false;index:idx_notification_recipient_read,priority:2"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`

	Recipient *User `json:"-" gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE"`
	Actor     *User `json:"-" gorm:"foreignKey:ActorID;constraint:OnDelete:CASCADE"`
}

// Target returns the generic reference of the notification's subject
func (n *Notification) Target() TargetRef {
	return TargetRef{Type: n.TargetType, ID: n.TargetID}
}

// NotificationView is the rendered notification returned to clients
type NotificationView struct {
	ID           uint           `json:"id"`
	Actor        UserCompact    `json:"actor"`
	Verb         Verb           `json:"verb"`
	TargetType   TargetType     `json:"target_type"`
	TargetID     uint           `json:"target_id"`
	IsRead       bool           `json:"is_read"`
	CreatedAt    time.Time      `json:"created_at"`
	Message      string         `json:"message"`
	TargetObject map[string]any `json:"target_object"`
	TimeSince    string         `json:"time_since"`
}

// NotificationSettings holds a user's per-category toggles
type NotificationSettings struct {
	ID                   uint      `json:"-" gorm:"primaryKey"`
	UserID               uint      `json:"-" gorm:"uniqueIndex;not null"`
	EmailNotifications   bool      `json:"email_notifications"`
	FollowNotifications  bool      `json:"follow_notifications"`
	LikeNotifications    bool      `json:"like_notifications"`
	CommentNotifications bool      `json:"comment_notifications"`
	ReplyNotifications   bool      `json:"reply_notifications"`
	CreatedAt            time.Time `json:"-"`
	UpdatedAt            time.Time `json:"-"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// DefaultNotificationSettings returns settings with every category enabled
func DefaultNotificationSettings(userID uint) *NotificationSettings {
	return &NotificationSettings{
		UserID:               userID,
		EmailNotifications:   true,
		FollowNotifications:  true,
		LikeNotifications:    true,
		CommentNotifications: true,
		ReplyNotifications:   true,
	}
}


// UpdateNotificationSettingsRequest updates any subset of the toggles
type UpdateNotificationSettingsRequest struct {
	EmailNotifications   *bool `json:"email_notifications,omitempty"`
	FollowNotifications  *bool `json:"follow_notifications,omitempty"`
	LikeNotifications    *bool `json:"like_notifications,omitempty"`
	CommentNotifications *bool `json:"comment_notifications,omitempty"`
	ReplyNotifications   *bool `json:"reply_notifications,omitempty"`
}

// MarkAsReadRequest selects notifications to mark read; empty means all
type MarkAsReadRequest struct {
	NotificationIDs []uint `json:"notification_ids,omitempty"`
}

// NotificationFilter narrows notification listings
type NotificationFilter struct {
	IsRead        *bool
	Verb          Verb
	TargetType    TargetType
	Actor         string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Page          int
	PageSize      int
}

// NotificationStats summarises a user's notifications
type NotificationStats struct {
	TotalCount  int64 `json:"total_count"`
	UnreadCount int64 `json:"unread_count"`
	RecentCount int64 `json:"recent_count"`
}
