package repositories

import (
	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	GetByID(id uint) (*models.Profile, error)
	GetByUserID(userID uint) (*models.Profile, error)
	GetByUsername(username string) (*models.Profile, error)
	Update(profile *models.Profile) error
	Search(query string, page, pageSize int) ([]models.Profile, int64, error)
}

// PostgresProfileRepository implements ProfileRepository with gorm
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) GetByID(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Preload("User").First(&profile, id).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) GetByUserID(userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) GetByUsername(username string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Preload("User").
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("users.username = ?", username).
		First(&profile).Error
	if err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

// Update saves bio and image
func (r *PostgresProfileRepository) Update(profile *models.Profile) error {
	return r.db.Model(profile).Select("bio", "image").Updates(profile).Error
}

// Search matches username, email or bio, ordered by username
func (r *PostgresProfileRepository) Search(query string, page, pageSize int) ([]models.Profile, int64, error) {
	q := contains(query)
	base := r.db.Model(&models.Profile{}).
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("LOWER(users.username) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(profiles.bio) LIKE ?", q, q, q).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.Profile
	err := base.Preload("User").
		Order("users.username").
		Scopes(paginate(page, pageSize)).
		Find(&profiles).Error
	return profiles, total, err
}
