package config

import (
	"time"

	"github.com/anonto42/nano-blog/backend/internal/logger"
	"github.com/anonto42/nano-blog/backend/internal/metrics"
	appmiddleware "github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func SetupMiddleware(e *echo.Echo, cfg *Config) {
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logRequest(c, v)
			if cfg.MetricsEnabled {
				metrics.HTTPRequest(v.Method, v.RoutePath, v.Status, v.Latency.Seconds())
			}
			return nil
		},
	}))
}

func logRequest(c echo.Context, v middleware.RequestLoggerValues) {
	fields := []zap.Field{
		zap.String("method", v.Method),
		zap.String("path", v.URIPath),
		zap.Int("status", v.Status),
		zap.Duration("latency", v.Latency.Round(time.Microsecond)),
		zap.String("client_ip", v.RemoteIP),
		zap.String("request_id", v.RequestID),
	}
	if userID, ok := appmiddleware.UserID(c); ok {
		fields = append(fields, zap.Uint("user_id", userID))
	}
	if v.Error != nil {
		fields = append(fields, zap.Error(v.Error))
	}

	switch {
	case v.Status >= 500:
		logger.Log.Error("HTTP request", fields...)
	case v.Status >= 400:
		logger.Log.Warn("HTTP request", fields...)
	default:
		logger.Log.Info("HTTP request", fields...)
	}
}
