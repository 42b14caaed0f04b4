package handlers

import (
	"fmt"
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SearchHandler handles search HTTP requests
type SearchHandler struct {
	search *services.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// RegisterSearchRoutes registers search routes
func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
	g.GET("/search/advanced", h.Advanced)
	g.GET("/search/autocomplete", h.Autocomplete)
	g.GET("/search/suggestions", h.Suggestions)
	g.GET("/search/trending", h.Trending)
	g.GET("/search/history", h.History, middleware.RequireUser)
	g.DELETE("/search/history/clear", h.ClearHistory, middleware.RequireUser)
	g.GET("/search/stats", h.Stats)
}

// Search runs the main search and records it in the caller's history
func (h *SearchHandler) Search(c echo.Context) error {
	var q models.SearchQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	res, err := h.search.Search(c.Request().Context(), services.SearchRequest{
		SearchQuery: q,
		UserID:      currentUserID(c),
		IPAddress:   c.RealIP(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Advanced searches posts with author, date and sort options
func (h *SearchHandler) Advanced(c echo.Context) error {
	query := models.AdvancedSearchQuery{
		Q:      c.QueryParam("q"),
		Author: c.QueryParam("author"),
		Type:   c.QueryParam("type"),
		Sort:   c.QueryParam("sort"),
	}
	var err error
	if query.DateFrom, err = queryTime(c, "date_from"); err != nil {
		return err
	}
	if query.DateTo, err = queryTime(c, "date_to"); err != nil {
		return err
	}

	res, err := h.search.Advanced(query, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Autocomplete suggests completions for a partial query
func (h *SearchHandler) Autocomplete(c echo.Context) error {
	res, err := h.search.Autocomplete(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Suggestions lists curated suggestions of a category
func (h *SearchHandler) Suggestions(c echo.Context) error {
	res, err := h.search.Suggestions(c.QueryParam("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Trending lists the most searched queries of the last week
func (h *SearchHandler) Trending(c echo.Context) error {
	res, err := h.search.Trending(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// History lists the caller's recent searches
func (h *SearchHandler) History(c echo.Context) error {
	res, err := h.search.History(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// ClearHistory deletes the caller's search history
func (h *SearchHandler) ClearHistory(c echo.Context) error {
	n, err := h.search.ClearHistory(c.Request().Context(), currentUserID(c))
	if err != nil {
		return err
	}
	return detail(c, http.StatusOK, fmt.Sprintf("%d search history entries cleared", n))
}

// Stats summarises search activity
func (h *SearchHandler) Stats(c echo.Context) error {
	res, err := h.search.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
