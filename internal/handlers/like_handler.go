package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likes *services.LikeService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	for _, t := range []models.TargetType{models.TargetPost, models.TargetComment} {
		base := "/" + string(t) + "s/:id"
		g.POST(base+"/like", h.like(t), middleware.RequireUser)
		g.POST(base+"/unlike", h.unlike(t), middleware.RequireUser)
		g.DELETE(base+"/like", h.unlike(t), middleware.RequireUser)
	}
}

func (h *LikeHandler) target(c echo.Context, t models.TargetType) (models.TargetRef, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return models.TargetRef{}, err
	}
	return models.TargetRef{Type: t, ID: id}, nil
}

// like handles liking a post or comment
func (h *LikeHandler) like(t models.TargetType) echo.HandlerFunc {
	return func(c echo.Context) error {
		target, err := h.target(c, t)
		if err != nil {
			return err
		}
		status, err := h.likes.Like(currentUserID(c), target)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, status)
	}
}

// unlike handles removing a like from a post or comment
func (h *LikeHandler) unlike(t models.TargetType) echo.HandlerFunc {
	return func(c echo.Context) error {
		target, err := h.target(c, t)
		if err != nil {
			return err
		}
		status, err := h.likes.Unlike(currentUserID(c), target)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, status)
	}
}
