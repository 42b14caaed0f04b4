package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func HealthCheck(e echo.Context) error {
	return e.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "nano-blog-api",
	})
}

// APIRoot lists the top-level endpoints
func APIRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Welcome to Blog API",
		"version": "v1",
		"endpoints": map[string]string{
			"authentication": "/api/v1/auth/",
			"posts":          "/api/v1/posts/",
			"comments":       "/api/v1/comments/",
			"notifications":  "/api/v1/notifications/",
			"search":         "/api/v1/search/",
		},
	})
}
