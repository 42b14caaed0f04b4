package repositories

import (
	"context"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SearchHistoryRepository records executed searches and popular query counters
type SearchHistoryRepository interface {
	Record(ctx context.Context, entry *models.SearchHistory) error
	GetHistory(ctx context.Context, userID uint, limit int) ([]models.SearchHistory, error)
	ClearHistory(ctx context.Context, userID uint) (int64, error)
	IncrementPopular(ctx context.Context, query string, at time.Time) error
	GetTrending(ctx context.Context, since time.Time, limit int) ([]models.PopularSearch, error)
	GetPopularContaining(ctx context.Context, query string, limit int) ([]models.PopularSearch, error)
	GetStats(ctx context.Context, recentSince time.Time, topLimit int) (*models.SearchStats, error)
}

// SearchSuggestionRepository reads curated suggestions
type SearchSuggestionRepository interface {
	GetByCategory(category string) ([]models.SearchSuggestion, error)
	GetContaining(query string, limit int) ([]models.SearchSuggestion, error)
}

// PostgresSearchRepository implements both search repositories with gorm
type PostgresSearchRepository struct {
	db *gorm.DB
}

// NewPostgresSearchRepository creates a new PostgresSearchRepository
func NewPostgresSearchRepository(db *gorm.DB) *PostgresSearchRepository {
	return &PostgresSearchRepository{db: db}
}

func (r *PostgresSearchRepository) Record(ctx context.Context, entry *models.SearchHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *PostgresSearchRepository) GetHistory(ctx context.Context, userID uint, limit int) ([]models.SearchHistory, error) {
	var history []models.SearchHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&history).Error
	return history, err
}

func (r *PostgresSearchRepository) ClearHistory(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.SearchHistory{})
	return res.RowsAffected, res.Error
}

// IncrementPopular upserts the counter row for an already normalised query
func (r *PostgresSearchRepository) IncrementPopular(ctx context.Context, query string, at time.Time) error {
	row := &models.PopularSearch{Query: query, SearchCount: 1, LastSearched: at, CreatedAt: at}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "query"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"search_count":  gorm.Expr("search_count + 1"),
			"last_searched": at,
		}),
	}).Create(row).Error
}

func (r *PostgresSearchRepository) GetTrending(ctx context.Context, since time.Time, limit int) ([]models.PopularSearch, error) {
	var trending []models.PopularSearch
	err := r.db.WithContext(ctx).
		Where("last_searched >= ?", since).
		Order("search_count DESC").
		Limit(limit).
		Find(&trending).Error
	return trending, err
}

func (r *PostgresSearchRepository) GetPopularContaining(ctx context.Context, query string, limit int) ([]models.PopularSearch, error) {
	var popular []models.PopularSearch
	err := r.db.WithContext(ctx).
		Where("LOWER(query) LIKE ?", contains(query)).
		Order("search_count DESC").
		Limit(limit).
		Find(&popular).Error
	return popular, err
}

func (r *PostgresSearchRepository) GetStats(ctx context.Context, recentSince time.Time, topLimit int) (*models.SearchStats, error) {
	db := r.db.WithContext(ctx)
	var stats models.SearchStats

	if err := db.Model(&models.SearchHistory{}).Count(&stats.TotalSearches).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.SearchHistory{}).Distinct("query").Count(&stats.UniqueQueries).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.SearchHistory{}).Where("created_at >= ?", recentSince).Count(&stats.RecentSearches).Error; err != nil {
		return nil, err
	}
	if err := db.Order("search_count DESC").Limit(topLimit).Find(&stats.TopQueries).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetByCategory returns the active suggestions of a category by priority
func (r *PostgresSearchRepository) GetByCategory(category string) ([]models.SearchSuggestion, error) {
	var suggestions []models.SearchSuggestion
	err := r.db.Where("category = ? AND is_active = ?", category, true).
		Order("priority DESC").Order("suggestion ASC").
		Find(&suggestions).Error
	return suggestions, err
}

func (r *PostgresSearchRepository) GetContaining(query string, limit int) ([]models.SearchSuggestion, error) {
	var suggestions []models.SearchSuggestion
	err := r.db.Where("is_active = ? AND LOWER(suggestion) LIKE ?", true, contains(query)).
		Order("priority DESC").
		Limit(limit).
		Find(&suggestions).Error
	return suggestions, err
}
