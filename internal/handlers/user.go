package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	profiles *services.ProfileService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles *services.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profiles/me", h.GetProfile, middleware.RequireUser)
	g.PUT("/profiles/me", h.UpdateProfile, middleware.RequireUser)
	g.PATCH("/profiles/me", h.UpdateProfile, middleware.RequireUser)
	g.GET("/profiles/:username", h.GetUser)
}

// GetUser returns the public profile of username
func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.profiles.GetByUsername(c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	profile, err := h.profiles.GetOwn(currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the authenticated user's bio and image
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.profiles.UpdateOwn(currentUserID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
