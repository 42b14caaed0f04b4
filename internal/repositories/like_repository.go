package repositories

import (
	"fmt"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(like *models.Like) error
	DeleteLike(userID uint, target models.TargetRef) error
	GetLike(userID uint, target models.TargetRef) (*models.Like, error)
	CountLikes(target models.TargetRef) (int64, error)
	HasUserLiked(userID uint, target models.TargetRef) (bool, error)
}

// PostgresLikeRepository implements LikeRepository with gorm
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func targetScope(target models.TargetRef) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("target_type = ? AND target_id = ?", target.Type, target.ID)
	}
}

// CreateLike inserts the like; a concurrent duplicate yields ErrDuplicate
func (r *PostgresLikeRepository) CreateLike(like *models.Like) error {
	if err := r.db.Create(like).Error; err != nil {
		return fmt.Errorf("create like: %w", translate(err))
	}
	return nil
}

func (r *PostgresLikeRepository) DeleteLike(userID uint, target models.TargetRef) error {
	res := r.db.Scopes(targetScope(target)).Where("user_id = ?", userID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("like on %s: %w", target, ErrNotFound)
	}
	return nil
}

func (r *PostgresLikeRepository) GetLike(userID uint, target models.TargetRef) (*models.Like, error) {
	var like models.Like
	if err := r.db.Scopes(targetScope(target)).Where("user_id = ?", userID).First(&like).Error; err != nil {
		return nil, translate(err)
	}
	return &like, nil
}

func (r *PostgresLikeRepository) CountLikes(target models.TargetRef) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Scopes(targetScope(target)).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresLikeRepository) HasUserLiked(userID uint, target models.TargetRef) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).Scopes(targetScope(target)).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
