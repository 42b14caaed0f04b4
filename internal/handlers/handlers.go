package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/logger"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// currentUserID returns the authenticated caller's id, or 0 for anonymous requests
func currentUserID(c echo.Context) uint {
	id, _ := middleware.UserID(c)
	return id
}

// parseID reads a positive integer path parameter
func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.BadRequest("Invalid " + strings.ReplaceAll(name, "_", " "))
	}
	return uint(id), nil
}

// bindAndValidate decodes the request into req and runs the struct validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.BadRequest("Invalid request payload")
	}
	return c.Validate(req)
}

func queryInt(c echo.Context, name string) int {
	n, _ := strconv.Atoi(c.QueryParam(name))
	return n
}

// queryBool parses true/false style query values; anything else is ignored
func queryBool(c echo.Context, name string) *bool {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// queryTime accepts RFC 3339 timestamps or plain dates
func queryTime(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.FieldError(name, "Enter a valid date/time.")
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"detail": msg})
}

type errorBody struct {
	Error *apperrors.Error `json:"error"`
}

// ErrorHandler renders every error in the {"error": {...}} envelope
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr *apperrors.Error
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &appErr):
	case errors.As(err, &httpErr):
		appErr = fromHTTPError(httpErr)
	default:
		appErr = apperrors.Internal(err)
	}

	if appErr.Status >= http.StatusInternalServerError {
		logger.Error("Request failed", err,
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(appErr.Status)
	} else {
		err = c.JSON(appErr.Status, errorBody{Error: appErr})
	}
	if err != nil {
		logger.Warn("Failed to write error response", err)
	}
}

func fromHTTPError(he *echo.HTTPError) *apperrors.Error {
	msg := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok {
		msg = m
	}
	code := apperrors.CodeBadRequest
	switch he.Code {
	case http.StatusUnauthorized:
		code = apperrors.CodeUnauthorized
	case http.StatusForbidden:
		code = apperrors.CodeForbidden
	case http.StatusNotFound:
		code = apperrors.CodeNotFound
	case http.StatusConflict:
		code = apperrors.CodeConflict
	case http.StatusServiceUnavailable:
		code = apperrors.CodeUnavailable
	}
	if he.Code >= http.StatusInternalServerError && he.Code != http.StatusServiceUnavailable {
		code = apperrors.CodeInternal
	}
	return &apperrors.Error{Code: code, Message: msg, Status: he.Code}
}
