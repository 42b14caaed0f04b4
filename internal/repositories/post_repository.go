package repositories

import (
	"fmt"
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(post *models.Post) error
	GetPostByID(id uint, vis Visibility) (*models.Post, error)
	ListPosts(filter models.PostFilter, vis Visibility) ([]models.Post, int64, error)
	GetPostsByAuthorIDs(authorIDs []uint, limit int) ([]models.Post, error)
	SearchPosts(query models.AdvancedSearchQuery, limit int) ([]models.Post, error)
	TitlesContaining(query string, limit int) ([]string, error)
	UpdatePost(post *models.Post) error
	DeactivatePost(id uint) error
	CountComments(postID uint) (int64, error)
}

// PostgresPostRepository implements PostRepository with gorm
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

var postOrderings = map[string]string{
	"created_at":  "posts.created_at ASC",
	"-created_at": "posts.created_at DESC",
	"title":       "posts.title ASC",
	"-title":      "posts.title DESC",
}

func (r *PostgresPostRepository) CreatePost(post *models.Post) error {
	post.IsActive = true
	if err := r.db.Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", translate(err))
	}
	return nil
}

// GetPostByID loads the post with its author
func (r *PostgresPostRepository) GetPostByID(id uint, vis Visibility) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Author").Scopes(vis.scope("posts.is_active")).First(&post, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// ListPosts applies filter and returns one page plus the total match count
func (r *PostgresPostRepository) ListPosts(filter models.PostFilter, vis Visibility) ([]models.Post, int64, error) {
	q := r.db.Model(&models.Post{}).Scopes(vis.scope("posts.is_active"))

	if filter.Author != "" {
		q = q.Joins("JOIN users ON users.id = posts.author_id").
			Where("LOWER(users.username) LIKE ?", contains(filter.Author))
	}
	if filter.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", filter.AuthorID)
	}
	if filter.Title != "" {
		q = q.Where("LOWER(posts.title) LIKE ?", contains(filter.Title))
	}
	if filter.Search != "" {
		s := contains(filter.Search)
		q = q.Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?", s, s)
	}
	if filter.CreatedAfter != nil {
		q = q.Where("posts.created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where("posts.created_at <= ?", *filter.CreatedBefore)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := postOrderings[filter.Ordering]
	if !ok {
		order = postOrderings["-created_at"]
	}

	var posts []models.Post
	err := q.Preload("Author").
		Order(order).
		Scopes(paginate(filter.Page, filter.PageSize)).
		Find(&posts).Error
	return posts, total, err
}

// GetPostsByAuthorIDs returns the newest active posts of the given authors
func (r *PostgresPostRepository) GetPostsByAuthorIDs(authorIDs []uint, limit int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	var posts []models.Post
	err := r.db.Preload("Author").
		Scopes(ActiveOnly.scope("posts.is_active")).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// SearchPosts matches active posts by title or content with optional author
// and date bounds. Sort "date" and "popularity" are applied here; relevance
// ordering is left to the caller.
func (r *PostgresPostRepository) SearchPosts(query models.AdvancedSearchQuery, limit int) ([]models.Post, error) {
	s := contains(query.Q)
	q := r.db.Model(&models.Post{}).
		Preload("Author").
		Scopes(ActiveOnly.scope("posts.is_active")).
		Where("LOWER(posts.title) LIKE ? OR LOWER(posts.content) LIKE ?", s, s)

	if query.Author != "" {
		q = q.Joins("JOIN users ON users.id = posts.author_id").
			Where("LOWER(users.username) LIKE ?", contains(query.Author))
	}
	if query.DateFrom != nil {
		q = q.Where("posts.created_at >= ?", *query.DateFrom)
	}
	if query.DateTo != nil {
		q = q.Where("posts.created_at <= ?", *query.DateTo)
	}

	switch query.Sort {
	case "date":
		q = q.Order("posts.created_at DESC")
	case "popularity":
		q = q.Order(fmt.Sprintf(
			"(SELECT COUNT(*) FROM likes WHERE likes.target_type = '%s' AND likes.target_id = posts.id) DESC, posts.created_at DESC",
			models.TargetPost,
		))
	default:
		q = q.Order("posts.created_at DESC")
	}

	var posts []models.Post
	err := q.Limit(limit).Find(&posts).Error
	return posts, err
}

// TitlesContaining returns up to limit active post titles containing query
func (r *PostgresPostRepository) TitlesContaining(query string, limit int) ([]string, error) {
	var titles []string
	err := r.db.Model(&models.Post{}).
		Scopes(ActiveOnly.scope("is_active")).
		Where("LOWER(title) LIKE ?", contains(query)).
		Order("created_at DESC").
		Limit(limit).
		Pluck("title", &titles).Error
	return titles, err
}

// UpdatePost saves title and content
func (r *PostgresPostRepository) UpdatePost(post *models.Post) error {
	post.Title = strings.TrimSpace(post.Title)
	return r.db.Model(post).Select("title", "content", "updated_at").Updates(post).Error
}

// DeactivatePost soft-deletes the post
func (r *PostgresPostRepository) DeactivatePost(id uint) error {
	res := r.db.Model(&models.Post{}).Where("id = ? AND is_active = ?", id, true).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountComments counts the active comments, replies included, of a post
func (r *PostgresPostRepository) CountComments(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).
		Scopes(ActiveOnly.scope("is_active")).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
