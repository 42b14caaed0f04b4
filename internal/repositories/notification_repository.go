package repositories

import (
	"fmt"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationKey identifies a notification by its full tuple
type NotificationKey struct {
	RecipientID uint
	ActorID     uint
	Verb        models.Verb
	Target      models.TargetRef
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	FindLatestSince(key NotificationKey, since time.Time) (*models.Notification, error)
	Refresh(notification *models.Notification, at time.Time) error
	DeleteByKey(key NotificationKey) (int64, error)

	GetByID(id, recipientID uint) (*models.Notification, error)
	GetByRecipientID(recipientID uint, filter models.NotificationFilter) ([]models.Notification, int64, error)
	GetUnread(recipientID uint, limit int) ([]models.Notification, error)
	GetGrouped(recipientID uint, now time.Time) (today, yesterday, thisWeek, older []models.Notification, err error)
	GetStats(recipientID uint, recentSince time.Time) (*models.NotificationStats, error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkAsRead(id, recipientID uint) error
	MarkAllAsRead(recipientID uint, ids []uint) (int64, error)
	Delete(id, recipientID uint) error
	DeleteAll(recipientID uint) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func keyScope(key NotificationKey) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"recipient_id = ? AND actor_id = ? AND verb = ? AND target_type = ? AND target_id = ?",
			key.RecipientID, key.ActorID, key.Verb, key.Target.Type, key.Target.ID,
		)
	}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	if err := r.db.Create(notification).Error; err != nil {
		return fmt.Errorf("create notification: %w", translate(err))
	}
	return nil
}

// FindLatestSince returns the newest notification with the exact tuple
// created at or after since
func (r *postgresNotificationRepository) FindLatestSince(key NotificationKey, since time.Time) (*models.Notification, error) {
	var n models.Notification
	err := r.db.Scopes(keyScope(key)).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		First(&n).Error
	if err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

// Refresh moves the notification to at and marks it unread
func (r *postgresNotificationRepository) Refresh(notification *models.Notification, at time.Time) error {
	err := r.db.Model(&models.Notification{}).
		Where("id = ?", notification.ID).
		Updates(map[string]interface{}{"created_at": at, "is_read": false}).Error
	if err != nil {
		return fmt.Errorf("refresh notification %d: %w", notification.ID, err)
	}
	notification.CreatedAt = at
	notification.IsRead = false
	return nil
}

// DeleteByKey removes every notification with the exact tuple, regardless of age
func (r *postgresNotificationRepository) DeleteByKey(key NotificationKey) (int64, error) {
	res := r.db.Scopes(keyScope(key)).Delete(&models.Notification{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s notifications on %s: %w", key.Verb, key.Target, translate(res.Error))
	}
	return res.RowsAffected, nil
}

func (r *postgresNotificationRepository) GetByID(id, recipientID uint) (*models.Notification, error) {
	var n models.Notification
	err := r.db.Preload("Actor").Where("id = ? AND recipient_id = ?", id, recipientID).First(&n).Error
	if err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (r *postgresNotificationRepository) GetByRecipientID(recipientID uint, filter models.NotificationFilter) ([]models.Notification, int64, error) {
	q := r.db.Model(&models.Notification{}).Where("notifications.recipient_id = ?", recipientID)

	if filter.IsRead != nil {
		q = q.Where("notifications.is_read = ?", *filter.IsRead)
	}
	if filter.Verb != "" {
		q = q.Where("notifications.verb = ?", filter.Verb)
	}
	if filter.TargetType != "" {
		q = q.Where("notifications.target_type = ?", filter.TargetType)
	}
	if filter.Actor != "" {
		q = q.Joins("JOIN users ON users.id = notifications.actor_id").
			Where("LOWER(users.username) LIKE ?", contains(filter.Actor))
	}
	if filter.CreatedAfter != nil {
		q = q.Where("notifications.created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("notifications.created_at <= ?", *filter.CreatedBefore)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := q.Preload("Actor").
		Order("notifications.created_at DESC").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *postgresNotificationRepository) GetUnread(recipientID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Preload("Actor").
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// GetGrouped buckets the recipient's notifications by calendar day relative to now
func (r *postgresNotificationRepository) GetGrouped(recipientID uint, now time.Time) (today, yesterday, thisWeek, older []models.Notification, retErr error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	base := r.db.Preload("Actor").Where("recipient_id = ?", recipientID).Order("created_at DESC").Session(&gorm.Session{})

	if err := base.Where("created_at >= ?", todayStart).Find(&today).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	if err := base.Where("created_at >= ? AND created_at < ?", yesterdayStart, todayStart).Find(&yesterday).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	if err := base.Where("created_at >= ? AND created_at < ?", weekStart, yesterdayStart).Find(&thisWeek).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	if err := base.Where("created_at < ?", weekStart).Limit(50).Find(&older).Error; err != nil {
		return nil, nil, nil, nil, err
	}
	return today, yesterday, thisWeek, older, nil
}

func (r *postgresNotificationRepository) GetStats(recipientID uint, recentSince time.Time) (*models.NotificationStats, error) {
	base := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Session(&gorm.Session{})

	var stats models.NotificationStats
	if err := base.Count(&stats.TotalCount).Error; err != nil {
		return nil, err
	}
	if err := base.Where("is_read = ?", false).Count(&stats.UnreadCount).Error; err != nil {
		return nil, err
	}
	if err := base.Where("created_at >= ?", recentSince).Count(&stats.RecentCount).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *postgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false).Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkAsRead(id, recipientID uint) error {
	res := r.db.Model(&models.Notification{}).Where("id = ? AND recipient_id = ?", id, recipientID).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkAllAsRead marks the recipient's unread notifications as read,
// restricted to ids when given, and returns how many changed
func (r *postgresNotificationRepository) MarkAllAsRead(recipientID uint, ids []uint) (int64, error) {
	q := r.db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", recipientID, false)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	res := q.Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) Delete(id, recipientID uint) error {
	res := r.db.Where("id = ? AND recipient_id = ?", id, recipientID).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("notification %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *postgresNotificationRepository) DeleteAll(recipientID uint) (int64, error) {
	res := r.db.Where("recipient_id = ?", recipientID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
