package repositories

import (
	"fmt"
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateWithProfile(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByFirebaseUID(firebaseUID string) (*models.User, error)
	GetByVerificationToken(token string) (*models.User, error)
	GetByResetToken(token string) (*models.User, error)
	EmailExists(email string) (bool, error)
	UsernameExists(username string) (bool, error)
	Update(user *models.User) error
	UsernamesContaining(query string, limit int) ([]string, error)
}

// PostgresUserRepository implements UserRepository with gorm
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateWithProfile inserts the user and its profile in one transaction
func (r *PostgresUserRepository) CreateWithProfile(user *models.User) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile := &models.Profile{UserID: user.ID}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(id uint) (*models.User, error) {
	return r.first("id = ?", id)
}

// GetByEmail matches case-insensitively; emails are stored lower-cased
func (r *PostgresUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.first("email = ?", strings.ToLower(email))
}

func (r *PostgresUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.first("username = ?", username)
}

func (r *PostgresUserRepository) GetByFirebaseUID(firebaseUID string) (*models.User, error) {
	return r.first("firebase_uid = ?", firebaseUID)
}

func (r *PostgresUserRepository) GetByVerificationToken(token string) (*models.User, error) {
	return r.first("verification_token = ?", token)
}

func (r *PostgresUserRepository) GetByResetToken(token string) (*models.User, error) {
	return r.first("reset_token = ?", token)
}

func (r *PostgresUserRepository) first(query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Profile").Where(query, arg).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) EmailExists(email string) (bool, error) {
	return r.exists("email = ?", strings.ToLower(email))
}

func (r *PostgresUserRepository) UsernameExists(username string) (bool, error) {
	return r.exists("username = ?", username)
}

func (r *PostgresUserRepository) exists(query string, arg interface{}) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update saves every column of an existing user
func (r *PostgresUserRepository) Update(user *models.User) error {
	return translate(r.db.Omit("Profile").Save(user).Error)
}

// UsernamesContaining returns up to limit usernames containing query
func (r *PostgresUserRepository) UsernamesContaining(query string, limit int) ([]string, error) {
	var names []string
	err := r.db.Model(&models.User{}).
		Where("LOWER(username) LIKE ?", contains(query)).
		Order("username").
		Limit(limit).
		Pluck("username", &names).Error
	return names, err
}
