package services

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/logger"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	previewSize      = 5
	suggestionLimit  = 10
	trendingLimit    = 10
	historyLimit     = 20
	advancedLimit    = 20
	statsTopLimit    = 5
	minPopularLength = 2
	trendingWindow   = 7 * 24 * time.Hour
)

// SearchResults is the combined answer of the main search endpoint
type SearchResults struct {
	Posts        []models.PostView    `json:"posts"`
	Comments     []models.CommentView `json:"comments"`
	Users        []models.Profile     `json:"users"`
	TotalResults int64                `json:"total_results"`
	Query        string               `json:"query"`
	SearchType   string               `json:"search_type"`
}

// Autocomplete lists suggestions for a partial query
type Autocomplete struct {
	Suggestions       []string                  `json:"suggestions"`
	PopularSearches   []models.PopularSearch    `json:"popular_searches"`
	ManualSuggestions []models.SearchSuggestion `json:"manual_suggestions"`
}

// SearchRequest carries a search plus who asked for it
type SearchRequest struct {
	models.SearchQuery
	UserID    uint
	IPAddress string
}

// SearchService runs content searches and keeps search history
type SearchService struct {
	posts       repositories.PostRepository
	comments    repositories.CommentRepository
	profiles    repositories.ProfileRepository
	users       repositories.UserRepository
	history     repositories.SearchHistoryRepository
	suggestions repositories.SearchSuggestionRepository
	views       views
	now         func() time.Time
}

// NewSearchService creates a SearchService
func NewSearchService(
	posts repositories.PostRepository,
	comments repositories.CommentRepository,
	profiles repositories.ProfileRepository,
	users repositories.UserRepository,
	likes repositories.LikeRepository,
	history repositories.SearchHistoryRepository,
	suggestions repositories.SearchSuggestionRepository,
) *SearchService {
	return &SearchService{
		posts:       posts,
		comments:    comments,
		profiles:    profiles,
		users:       users,
		history:     history,
		suggestions: suggestions,
		views:       views{likes: likes, posts: posts, comments: comments},
		now:         time.Now,
	}
}

// Search matches posts, comments and profiles. With type "all" each
// category is capped to a preview; otherwise the chosen category is paged.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResults, error) {
	query := strings.TrimSpace(req.Q)
	if query == "" {
		return nil, apperrors.FieldError("q", "This field is required.")
	}
	searchType := req.Type
	if searchType == "" {
		searchType = models.SearchAll
	}

	sizeFor := func(t string) (int, int) {
		if searchType == t {
			return repositories.NormalizePage(req.Page, req.PageSize)
		}
		return 1, previewSize
	}

	res := &SearchResults{
		Posts:      []models.PostView{},
		Comments:   []models.CommentView{},
		Users:      []models.Profile{},
		Query:      query,
		SearchType: searchType,
	}

	if searchType == models.SearchAll || searchType == models.SearchPost {
		page, size := sizeFor(models.SearchPost)
		posts, total, err := s.posts.ListPosts(models.PostFilter{Search: query, Page: page, PageSize: size}, repositories.ActiveOnly)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if res.Posts, err = s.views.postList(posts, req.UserID); err != nil {
			return nil, apperrors.Internal(err)
		}
		res.TotalResults += total
	}
	if searchType == models.SearchAll || searchType == models.SearchComment {
		page, size := sizeFor(models.SearchComment)
		comments, total, err := s.comments.SearchComments(query, page, size)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		if res.Comments, err = s.views.commentList(comments, req.UserID, false); err != nil {
			return nil, apperrors.Internal(err)
		}
		res.TotalResults += total
	}
	if searchType == models.SearchAll || searchType == models.SearchUser {
		page, size := sizeFor(models.SearchUser)
		profiles, total, err := s.profiles.Search(query, page, size)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		res.Users = profiles
		res.TotalResults += total
	}

	s.record(ctx, req, query, searchType, res.TotalResults)
	return res, nil
}

// record stores the history entry and bumps the popular counter. Failures
// are logged only.
func (s *SearchService) record(ctx context.Context, req SearchRequest, query, searchType string, results int64) {
	entry := &models.SearchHistory{
		Query:        query,
		SearchType:   searchType,
		ResultsCount: results,
		IPAddress:    req.IPAddress,
		CreatedAt:    s.now(),
	}
	if req.UserID != 0 {
		uid := req.UserID
		entry.UserID = &uid
	}
	if err := s.history.Record(ctx, entry); err != nil {
		logger.Warn("Failed to record search history", err, zap.String("query", query))
	}

	normalized := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(normalized)) < minPopularLength {
		return
	}
	if err := s.history.IncrementPopular(ctx, normalized, s.now()); err != nil {
		logger.Warn("Failed to increment popular search", err, zap.String("query", normalized))
	}
}

// Autocomplete suggests titles, usernames, popular and curated queries for
// prefixes of at least two characters
func (s *SearchService) Autocomplete(ctx context.Context, q string) (*Autocomplete, error) {
	out := &Autocomplete{
		Suggestions:       []string{},
		PopularSearches:   []models.PopularSearch{},
		ManualSuggestions: []models.SearchSuggestion{},
	}
	query := strings.TrimSpace(q)
	if len([]rune(query)) < minPopularLength {
		return out, nil
	}

	titles, err := s.posts.TitlesContaining(query, previewSize)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	usernames, err := s.users.UsernamesContaining(query, previewSize)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	seen := map[string]bool{}
	add := func(v string) {
		if seen[v] || len(out.Suggestions) >= suggestionLimit {
			return
		}
		seen[v] = true
		out.Suggestions = append(out.Suggestions, v)
	}
	for _, t := range titles {
		add(t)
	}
	for _, u := range usernames {
		add("@" + u)
	}

	popular, err := s.history.GetPopularContaining(ctx, query, previewSize)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if popular != nil {
		out.PopularSearches = popular
	}
	manual, err := s.suggestions.GetContaining(query, previewSize)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if manual != nil {
		out.ManualSuggestions = manual
	}
	return out, nil
}

// Trending returns the most searched queries of the last week
func (s *SearchService) Trending(ctx context.Context) ([]models.PopularSearch, error) {
	trending, err := s.history.GetTrending(ctx, s.now().Add(-trendingWindow), trendingLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if trending == nil {
		trending = []models.PopularSearch{}
	}
	return trending, nil
}

// History returns userID's latest searches
func (s *SearchService) History(ctx context.Context, userID uint) ([]models.SearchHistory, error) {
	history, err := s.history.GetHistory(ctx, userID, historyLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if history == nil {
		history = []models.SearchHistory{}
	}
	return history, nil
}

// ClearHistory deletes userID's search history
func (s *SearchService) ClearHistory(ctx context.Context, userID uint) (int64, error) {
	n, err := s.history.ClearHistory(ctx, userID)
	if err != nil {
		return 0, apperrors.Internal(err)
	}
	return n, nil
}

// Suggestions lists curated suggestions of a category ("general" by default)
func (s *SearchService) Suggestions(category string) ([]models.SearchSuggestion, error) {
	if category == "" {
		category = "general"
	}
	out, err := s.suggestions.GetByCategory(category)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if out == nil {
		out = []models.SearchSuggestion{}
	}
	return out, nil
}

// Stats summarises search activity
func (s *SearchService) Stats(ctx context.Context) (*models.SearchStats, error) {
	stats, err := s.history.GetStats(ctx, s.now().Add(-trendingWindow), statsTopLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if stats.TopQueries == nil {
		stats.TopQueries = []models.PopularSearch{}
	}
	return stats, nil
}

// Advanced searches posts with author and date filters. Sort "relevance"
// (the default) ranks by Relevance over title and content.
func (s *SearchService) Advanced(query models.AdvancedSearchQuery, viewerID uint) (map[string][]models.PostView, error) {
	query.Q = strings.TrimSpace(query.Q)
	if query.Q == "" {
		return nil, apperrors.BadRequest("Search query is required")
	}
	if query.Type == "" {
		query.Type = models.SearchAll
	}
	if query.Sort == "" {
		query.Sort = "relevance"
	}

	results := map[string][]models.PostView{}
	if query.Type != models.SearchAll && query.Type != models.SearchPost {
		return results, nil
	}

	posts, err := s.posts.SearchPosts(query, advancedLimit)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if query.Sort == "relevance" {
		sort.SliceStable(posts, func(i, j int) bool {
			return Relevance(posts[i].Title+" "+posts[i].Content, query.Q) >
				Relevance(posts[j].Title+" "+posts[j].Content, query.Q)
		})
	}
	views, err := s.views.postList(posts, viewerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	results["posts"] = views
	return results, nil
}

var wordPattern = regexp.MustCompile(`\w+`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
}

// Keywords splits query into lower-cased words longer than two characters,
// dropping stop words
func Keywords(query string) []string {
	var out []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(query), -1) {
		if len(w) > 2 && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// Relevance scores text against query: 10 for containing the whole query,
// 2 per keyword found and 5 more when text starts with the query
func Relevance(text, query string) int {
	if text == "" || query == "" {
		return 0
	}
	t, q := strings.ToLower(text), strings.ToLower(query)
	score := 0
	if strings.Contains(t, q) {
		score += 10
	}
	for _, k := range Keywords(query) {
		if strings.Contains(t, k) {
			score += 2
		}
	}
	if strings.HasPrefix(t, q) {
		score += 5
	}
	return score
}
