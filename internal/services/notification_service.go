package services

import (
	"errors"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/notifications"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
)

const (
	unreadLimit  = 10
	recentWindow = 7 * 24 * time.Hour
)

// GroupedNotifications buckets rendered notifications by day
type GroupedNotifications struct {
	Today     []models.NotificationView `json:"today"`
	Yesterday []models.NotificationView `json:"yesterday"`
	ThisWeek  []models.NotificationView `json:"this_week"`
	Older     []models.NotificationView `json:"older"`
}

// UnreadNotifications is the unread count plus the newest unread items
type UnreadNotifications struct {
	Count         int64                     `json:"count"`
	Notifications []models.NotificationView `json:"notifications"`
}

// NotificationService serves a recipient's notifications and settings
type NotificationService struct {
	notifications repositories.NotificationRepository
	settings      repositories.NotificationSettingsRepository
	renderer      *notifications.Renderer
	now           func() time.Time
}

// NewNotificationService creates a NotificationService
func NewNotificationService(n repositories.NotificationRepository, settings repositories.NotificationSettingsRepository, renderer *notifications.Renderer) *NotificationService {
	return &NotificationService{notifications: n, settings: settings, renderer: renderer, now: time.Now}
}

// List pages through recipientID's notifications, newest first
func (s *NotificationService) List(recipientID uint, filter models.NotificationFilter) (*models.Page[models.NotificationView], error) {
	if filter.Verb != "" && !filter.Verb.Valid() {
		return nil, apperrors.FieldError("verb", "Select a valid choice.")
	}
	if filter.TargetType != "" && !filter.TargetType.Valid() {
		return nil, apperrors.FieldError("target_type", "Select a valid choice.")
	}
	filter.Page, filter.PageSize = repositories.NormalizePage(filter.Page, filter.PageSize)
	items, total, err := s.notifications.GetByRecipientID(recipientID, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	page := models.NewPage(s.renderer.Views(items), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Stats counts total, unread and last-week notifications
func (s *NotificationService) Stats(recipientID uint) (*models.NotificationStats, error) {
	stats, err := s.notifications.GetStats(recipientID, s.now().Add(-recentWindow))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return stats, nil
}

// Unread returns the unread count and the newest unread notifications
func (s *NotificationService) Unread(recipientID uint) (*UnreadNotifications, error) {
	count, err := s.notifications.GetUnreadCount(recipientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	items, err := s.notifications.GetUnread(recipientID, unreadLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &UnreadNotifications{Count: count, Notifications: s.renderer.Views(items)}, nil
}

// Grouped returns notifications bucketed into today, yesterday, this week and older
func (s *NotificationService) Grouped(recipientID uint) (*GroupedNotifications, error) {
	today, yesterday, week, older, err := s.notifications.GetGrouped(recipientID, s.now())
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &GroupedNotifications{
		Today:     s.renderer.Views(today),
		Yesterday: s.renderer.Views(yesterday),
		ThisWeek:  s.renderer.Views(week),
		Older:     s.renderer.Views(older),
	}, nil
}

// MarkAsRead marks one of recipientID's notifications as read
func (s *NotificationService) MarkAsRead(id, recipientID uint) (*models.NotificationView, error) {
	if err := s.notifications.MarkAsRead(id, recipientID); err != nil {
		return nil, lookupErr(err, "notification")
	}
	n, err := s.notifications.GetByID(id, recipientID)
	if err != nil {
		return nil, lookupErr(err, "notification")
	}
	view := s.renderer.View(n)
	return &view, nil
}

// MarkAllAsRead marks the listed notifications, or all when ids is empty,
// as read and returns how many changed
func (s *NotificationService) MarkAllAsRead(recipientID uint, ids []uint) (int64, error) {
	n, err := s.notifications.MarkAllAsRead(recipientID, ids)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}

// Delete removes one of recipientID's notifications
func (s *NotificationService) Delete(id, recipientID uint) error {
	if err := s.notifications.Delete(id, recipientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("notification")
		}
		return apperrors.Internal(err)
	}
	return nil
}

// Clear removes all of recipientID's notifications
func (s *NotificationService) Clear(recipientID uint) (int64, error) {
	n, err := s.notifications.DeleteAll(recipientID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}

// GetSettings returns userID's settings, creating the defaults on first use
func (s *NotificationService) GetSettings(userID uint) (*models.NotificationSettings, error) {
	settings, err := s.settings.GetOrCreate(userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return settings, nil
}

// UpdateSettings applies the toggles present in req
func (s *NotificationService) UpdateSettings(userID uint, req *models.UpdateNotificationSettingsRequest) (*models.NotificationSettings, error) {
	settings, err := s.GetSettings(userID)
	if err != nil {
		return nil, err
	}
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&settings.EmailNotifications, req.EmailNotifications)
	set(&settings.FollowNotifications, req.FollowNotifications)
	set(&settings.LikeNotifications, req.LikeNotifications)
	set(&settings.CommentNotifications, req.CommentNotifications)
	set(&settings.ReplyNotifications, req.ReplyNotifications)

	if err := s.settings.Update(settings); err != nil {
		return nil, apperrors.Internal(err)
	}
	return settings, nil
}
