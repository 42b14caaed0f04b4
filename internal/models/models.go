package models

// All returns every persisted model in migration order
func All() []any {
	return []any{
		&User{},
		&Profile{},
		&Follow{},
		&Post{},
		&Comment{},
		&Like{},
		&Notification{},
		&NotificationSettings{},
		&SearchHistory{},
		&PopularSearch{},
		&SearchSuggestion{},
	}
}

// Page is a paginated slice of results
type Page[T any] struct {
	Items      []T   `json:"results"`
	Total      int64 `json:"count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPage builds a Page, computing the page count
func NewPage[T any](items []T, total int64, page, pageSize int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page[T]{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: pages}
}
