package repositories

import (
	"fmt"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations.
// A follow points from a user to a profile.
type FollowRepository interface {
	CreateFollow(follow *models.Follow) error
	DeleteFollow(followerID, profileID uint) error
	IsFollowing(followerID, profileID uint) (bool, error)
	GetFollowers(profileID uint) ([]models.User, error)
	GetFollowing(userID uint) ([]models.Profile, error)
	GetFollowersCount(profileID uint) (int64, error)
	GetFollowingCount(userID uint) (int64, error)
	GetFollowedUserIDs(userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository with gorm
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow inserts the edge; a concurrent duplicate yields ErrDuplicate
func (r *PostgresFollowRepository) CreateFollow(follow *models.Follow) error {
	if err := r.db.Create(follow).Error; err != nil {
		return fmt.Errorf("create follow: %w", translate(err))
	}
	return nil
}

func (r *PostgresFollowRepository) DeleteFollow(followerID, profileID uint) error {
	res := r.db.Where("follower_id = ? AND following_id = ?", followerID, profileID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("follow relationship: %w", ErrNotFound)
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(followerID, profileID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", followerID, profileID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowers returns the users following the profile, newest edge first
func (r *PostgresFollowRepository) GetFollowers(profileID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.Preload("Profile").
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", profileID).
		Order("follows.created_at DESC").
		Find(&users).Error
	return users, err
}

// GetFollowing returns the profiles the user follows, newest edge first
func (r *PostgresFollowRepository) GetFollowing(userID uint) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.Preload("User").
		Joins("JOIN follows ON follows.following_id = profiles.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&profiles).Error
	return profiles, err
}

func (r *PostgresFollowRepository) GetFollowersCount(profileID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("following_id = ?", profileID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

// GetFollowedUserIDs returns the user ids behind every profile userID follows
func (r *PostgresFollowRepository) GetFollowedUserIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Profile{}).
		Where("id IN (?)", r.db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", userID)).
		Pluck("user_id", &ids).Error
	return ids, err
}
