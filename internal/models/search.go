package models

import "time"

// Search types accepted by the search endpoints
const (
	SearchAll     = "all"
	SearchPost    = "post"
	SearchComment = "comment"
	SearchUser    = "user"
)

// SearchHistory records one executed search
type SearchHistory struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       *uint     `json:"-" gorm:"index"`
	Query        string    `json:"query" gorm:"size:255;index;not null"`
	SearchType   string    `json:"search_type" gorm:"size:20;default:'all';index"`
	ResultsCount int64     `json:"results_count"`
	IPAddress    string    `json:"-" gorm:"size:45"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// PopularSearch counts how often a normalised query was searched
type PopularSearch struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	Query        string    `json:"query" gorm:"size:255;uniqueIndex;not null"`
	SearchCount  int64     `json:"search_count" gorm:"default:1;index"`
	LastSearched time.Time `json:"last_searched"`
	CreatedAt    time.Time `json:"-"`
}

// SearchSuggestion is a curated autocomplete entry
type SearchSuggestion struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Suggestion string    `json:"suggestion" gorm:"size:255;uniqueIndex;not null"`
	Category   string    `json:"category" gorm:"size:20;default:'general';index"`
	IsActive   bool      `json:"-" gorm:"default:true"`
	Priority   int       `json:"priority" gorm:"default:0"`
	CreatedAt  time.Time `json:"-"`
}

// SearchQuery is the validated input of the main search endpoint
type SearchQuery struct {
	Q        string `query:"q" validate:"required,min=1,max=255"`
	Type     string `query:"type" validate:"omitempty,oneof=all post comment user"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=50"`
}

// AdvancedSearchQuery filters posts beyond a plain text match
type AdvancedSearchQuery struct {
	Q        string
	Author   string
	DateFrom *time.Time
	DateTo   *time.Time
	Type     string
	Sort     string
}

// SearchStats summarises search activity
type SearchStats struct {
	TotalSearches  int64           `json:"total_searches"`
	UniqueQueries  int64           `json:"unique_queries"`
	RecentSearches int64           `json:"recent_searches"`
	TopQueries     []PopularSearch `json:"top_queries"`
}
