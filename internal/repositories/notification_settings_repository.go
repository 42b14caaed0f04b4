package repositories

import (
	"errors"
	"fmt"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationSettingsRepository stores per-user notification toggles
type NotificationSettingsRepository interface {
	GetOrCreate(userID uint) (*models.NotificationSettings, error)
	Update(settings *models.NotificationSettings) error
}

type postgresNotificationSettingsRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationSettingsRepository(db *gorm.DB) NotificationSettingsRepository {
	return &postgresNotificationSettingsRepository{db: db}
}

// GetOrCreate returns the user's settings, creating them with every
// category enabled when absent. A lost creation race re-reads the winner.
func (r *postgresNotificationSettingsRepository) GetOrCreate(userID uint) (*models.NotificationSettings, error) {
	var settings models.NotificationSettings
	err := r.db.Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.DefaultNotificationSettings(userID)
	if err := r.db.Create(created).Error; err != nil {
		if translate(err) != ErrDuplicate {
			return nil, fmt.Errorf("create notification settings: %w", err)
		}
		if err := r.db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
			return nil, translate(err)
		}
		return &settings, nil
	}
	return created, nil
}

func (r *postgresNotificationSettingsRepository) Update(settings *models.NotificationSettings) error {
	return r.db.Model(settings).Select(
		"email_notifications",
		"follow_notifications",
		"like_notifications",
		"comment_notifications",
		"reply_notifications",
	).Updates(settings).Error
}
