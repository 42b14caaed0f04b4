package middleware

import (
	"strings"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/auth"
	"github.com/labstack/echo/v4"
)

// Context keys set by the auth middleware
const (
	UserIDKey = "user_id"
	ClaimsKey = "user"
)

// OptionalJWTAuth lets anonymous requests through but still identifies
// callers that present a token. A bad token is rejected.
func OptionalJWTAuth(issuer *auth.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}
			if tokenString != "" {
				if err := authenticate(c, issuer, tokenString); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

// RequireUser rejects requests that OptionalJWTAuth left anonymous
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := UserID(c); !ok {
			return apperrors.Unauthorized("Authentication credentials were not provided.")
		}
		return next(c)
	}
}

// UserID returns the authenticated caller, if any
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(UserIDKey).(uint)
	return id, ok && id != 0
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", nil
	}
	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", apperrors.Unauthorized("Invalid Authorization header format")
	}
	return parts[1], nil
}

func authenticate(c echo.Context, issuer *auth.Issuer, tokenString string) error {
	claims, err := issuer.Parse(tokenString, auth.TokenAccess)
	if err != nil {
		return apperrors.Unauthorized("Given token not valid for any token type")
	}
	c.Set(ClaimsKey, claims)
	c.Set(UserIDKey, claims.UserID)
	return nil
}
