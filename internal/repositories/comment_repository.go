package repositories

import (
	"fmt"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint, vis Visibility) (*models.Comment, error)
	GetTopLevelByPostID(postID uint, filter models.CommentFilter, vis Visibility) ([]models.Comment, int64, error)
	GetReplies(parentID uint, vis Visibility) ([]models.Comment, error)
	CountReplies(parentID uint, vis Visibility) (int64, error)
	GetCommentsByAuthorID(authorID uint, page, pageSize int, vis Visibility) ([]models.Comment, int64, error)
	SearchComments(query string, page, pageSize int) ([]models.Comment, int64, error)
	UpdateComment(comment *models.Comment) error
	DeactivateComment(id uint) error
}

// PostgresCommentRepository implements CommentRepository with gorm
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	comment.IsActive = true
	if err := r.db.Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", translate(err))
	}
	return nil
}

// GetCommentByID loads the comment with its author and post
func (r *PostgresCommentRepository) GetCommentByID(id uint, vis Visibility) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.Preload("Author").Preload("Post").
		Scopes(vis.scope("comments.is_active")).
		First(&comment, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

// GetTopLevelByPostID pages through the post's comments that are not replies
func (r *PostgresCommentRepository) GetTopLevelByPostID(postID uint, filter models.CommentFilter, vis Visibility) ([]models.Comment, int64, error) {
	q := r.db.Model(&models.Comment{}).
		Scopes(vis.scope("comments.is_active")).
		Where("comments.post_id = ? AND comments.parent_id IS NULL", postID)

	if filter.Author != "" {
		q = q.Joins("JOIN users ON users.id = comments.author_id").
			Where("LOWER(users.username) LIKE ?", contains(filter.Author))
	}
	if filter.Content != "" {
		q = q.Where("LOWER(comments.content) LIKE ?", contains(filter.Content))
	}
	if filter.HasReplies != nil {
		const replies = "EXISTS (SELECT 1 FROM comments AS replies WHERE replies.parent_id = comments.id AND replies.is_active = ?)"
		if *filter.HasReplies {
			q = q.Where(replies, true)
		} else {
			q = q.Where("NOT "+replies, true)
		}
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := q.Preload("Author").
		Order("comments.created_at DESC").
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&comments).Error
	return comments, total, err
}

// GetReplies returns the replies of a comment, oldest first
func (r *PostgresCommentRepository) GetReplies(parentID uint, vis Visibility) ([]models.Comment, error) {
	var replies []models.Comment
	err := r.db.Preload("Author").
		Scopes(vis.scope("is_active")).
		Where("parent_id = ?", parentID).
		Order("created_at ASC").
		Find(&replies).Error
	return replies, err
}

func (r *PostgresCommentRepository) CountReplies(parentID uint, vis Visibility) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).
		Scopes(vis.scope("is_active")).
		Where("parent_id = ?", parentID).
		Count(&count).Error
	return count, err
}

func (r *PostgresCommentRepository) GetCommentsByAuthorID(authorID uint, page, pageSize int, vis Visibility) ([]models.Comment, int64, error) {
	q := r.db.Model(&models.Comment{}).
		Scopes(vis.scope("is_active")).
		Where("author_id = ?", authorID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := q.Preload("Author").Preload("Post").
		Order("created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&comments).Error
	return comments, total, err
}

// SearchComments matches active comments on active posts by content
func (r *PostgresCommentRepository) SearchComments(query string, page, pageSize int) ([]models.Comment, int64, error) {
	q := r.db.Model(&models.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("comments.is_active = ? AND posts.is_active = ?", true, true).
		Where("LOWER(comments.content) LIKE ?", contains(query)).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := q.Preload("Author").Preload("Post").
		Order("comments.created_at DESC").
		Scopes(paginate(page, pageSize)).
		Find(&comments).Error
	return comments, total, err
}

// UpdateComment saves the content
func (r *PostgresCommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Model(comment).Select("content").Updates(comment).Error
}

// DeactivateComment soft-deletes the comment together with its replies
func (r *PostgresCommentRepository) DeactivateComment(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Comment{}).Where("id = ? AND is_active = ?", id, true).Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("comment %d: %w", id, ErrNotFound)
		}
		return tx.Model(&models.Comment{}).Where("parent_id = ?", id).Update("is_active", false).Error
	})
}
