package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow-related HTTP requests
type FollowHandler struct {
	profiles *services.ProfileService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(profiles *services.ProfileService) *FollowHandler {
	return &FollowHandler{profiles: profiles}
}

// RegisterFollowRoutes registers follow routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/profiles/:username/follow", h.FollowUser, middleware.RequireUser)
	g.POST("/profiles/:username/unfollow", h.UnfollowUser, middleware.RequireUser)
	g.DELETE("/profiles/:username/follow", h.UnfollowUser, middleware.RequireUser)
	g.GET("/profiles/:username/followers", h.GetFollowers)
	g.GET("/profiles/:username/following", h.GetFollowing)
}

// FollowUser follows a user by username
func (h *FollowHandler) FollowUser(c echo.Context) error {
	profile, err := h.profiles.Follow(currentUserID(c), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UnfollowUser unfollows a user by username
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	profile, err := h.profiles.Unfollow(currentUserID(c), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// GetFollowers lists the profiles following username
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	profiles, err := h.profiles.Followers(c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profiles)
}

// GetFollowing lists the profiles username follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	profiles, err := h.profiles.Following(c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profiles)
}
