package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the posts of followed users
type FeedHandler struct {
	posts *services.PostService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(posts *services.PostService) *FeedHandler {
	return &FeedHandler{posts: posts}
}

// RegisterFeedRoutes registers feed routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed, middleware.RequireUser)
}

// GetFeed returns the newest posts from profiles the caller follows
func (h *FeedHandler) GetFeed(c echo.Context) error {
	posts, err := h.posts.Feed(currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}
