package handlers

import (
	"fmt"
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes. All of them
// require an authenticated caller.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	n := g.Group("/notifications", middleware.RequireUser)
	n.GET("", h.GetNotifications)
	n.GET("/stats", h.GetStats)
	n.GET("/unread", h.GetUnread)
	n.GET("/grouped", h.GetGroupedNotifications)
	n.POST("/mark-all-read", h.MarkAllAsRead)
	n.DELETE("/clear-all", h.ClearAll)
	n.POST("/:id/mark-as-read", h.MarkAsRead)
	n.DELETE("/:id/delete", h.Delete)
	n.DELETE("/:id", h.Delete)

	g.GET("/notification-settings", h.GetSettings, middleware.RequireUser)
	g.PUT("/notification-settings", h.UpdateSettings, middleware.RequireUser)
	g.PATCH("/notification-settings", h.UpdateSettings, middleware.RequireUser)
}

// GetNotifications returns the caller's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	filter := models.NotificationFilter{
		IsRead:     queryBool(c, "is_read"),
		Verb:       models.Verb(c.QueryParam("verb")),
		TargetType: models.TargetType(c.QueryParam("target_type")),
		Actor:      c.QueryParam("actor"),
		Page:       queryInt(c, "page"),
		PageSize:   queryInt(c, "page_size"),
	}
	var err error
	if filter.CreatedAfter, err = queryTime(c, "created_after"); err != nil {
		return err
	}
	if filter.CreatedBefore, err = queryTime(c, "created_before"); err != nil {
		return err
	}

	page, err := h.notifications.List(currentUserID(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetStats returns total, unread and recent counts
func (h *NotificationHandler) GetStats(c echo.Context) error {
	stats, err := h.notifications.Stats(currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// GetUnread returns the newest unread notifications
func (h *NotificationHandler) GetUnread(c echo.Context) error {
	unread, err := h.notifications.Unread(currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unread.Notifications)
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	userID := currentUserID(c)
	grouped, err := h.notifications.Grouped(userID)
	if err != nil {
		return err
	}
	unread, err := h.notifications.Unread(userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"notifications": grouped,
		"unread_count":  unread.Count,
	})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.notifications.MarkAsRead(id, currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// MarkAllAsRead marks the listed notifications, or all of them, as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	var req models.MarkAsReadRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
	}

	n, err := h.notifications.MarkAllAsRead(currentUserID(c), req.NotificationIDs)
	if err != nil {
		return err
	}
	return detail(c, http.StatusOK, fmt.Sprintf("%d notifications marked as read", n))
}

// Delete removes one notification
func (h *NotificationHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.notifications.Delete(id, currentUserID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearAll removes every notification of the caller
func (h *NotificationHandler) ClearAll(c echo.Context) error {
	n, err := h.notifications.Clear(currentUserID(c))
	if err != nil {
		return err
	}
	return detail(c, http.StatusOK, fmt.Sprintf("%d notifications cleared", n))
}

// GetSettings returns the caller's notification settings
func (h *NotificationHandler) GetSettings(c echo.Context) error {
	settings, err := h.notifications.GetSettings(currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings changes the caller's notification settings
func (h *NotificationHandler) UpdateSettings(c echo.Context) error {
	var req models.UpdateNotificationSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	settings, err := h.notifications.UpdateSettings(currentUserID(c), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}
