package handlers

import (
	"net/http"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	accounts *services.AccountService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.GET("/verify-email", h.VerifyEmail)
	g.POST("/verify-email", h.VerifyEmail)
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout, middleware.RequireUser)
	g.POST("/token/refresh", h.RefreshToken)
	g.POST("/password-reset", h.PasswordReset)
	g.POST("/password-reset/confirm", h.PasswordResetConfirm)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.GET("/me", h.Me, middleware.RequireUser)
	g.GET("/users/me", h.Me, middleware.RequireUser)
}

// Register creates a local account and sends the verification email
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.accounts.Register(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// VerifyEmail accepts the token from the emailed link or a JSON body
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" && c.Request().Method == http.MethodPost {
		var req models.TokenRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		token = req.Token
	}
	if token == "" {
		return apperrors.FieldError("token", "This field is required.")
	}

	if err := h.accounts.VerifyEmail(token); err != nil {
		return err
	}
	return detail(c, http.StatusOK, "Email verified successfully")
}

// Login exchanges email and password for a token pair
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.accounts.Login(&req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Logout acknowledges the caller's refresh token
func (h *AuthHandler) Logout(c echo.Context) error {
	var req models.RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.Logout(currentUserID(c), req.Refresh); err != nil {
		return err
	}
	return detail(c, http.StatusOK, "Logout successful")
}

// RefreshToken issues a new token pair for a valid refresh token
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req models.RefreshRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.accounts.Refresh(req.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"access": result.Access, "refresh": result.Refresh})
}

// PasswordReset always answers success so callers cannot enumerate accounts
func (h *AuthHandler) PasswordReset(c echo.Context) error {
	var req models.PasswordResetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return detail(c, http.StatusOK, "Password reset email sent")
}

// PasswordResetConfirm sets a new password using the emailed token
func (h *AuthHandler) PasswordResetConfirm(c echo.Context) error {
	var req models.PasswordResetConfirmRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.accounts.ConfirmPasswordReset(&req); err != nil {
		return err
	}
	return detail(c, http.StatusOK, "Password reset successful")
}

// FirebaseLogin handles Firebase ID token verification and issues local tokens
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.accounts.FirebaseLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.accounts.Me(currentUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
