package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/email"
	"github.com/anonto42/nano-blog/backend/internal/handlers"
	"github.com/anonto42/nano-blog/backend/internal/logger"
	"github.com/anonto42/nano-blog/backend/internal/router"
	"github.com/anonto42/nano-blog/backend/internal/services"
	"github.com/anonto42/nano-blog/backend/pkg/config"
	"github.com/anonto42/nano-blog/backend/pkg/firebase"
	"github.com/anonto42/nano-blog/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	// Firebase is optional
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Firebase", zap.Error(err))
	}
	var verifier services.IDTokenVerifier
	if firebaseApp != nil {
		verifier = firebaseApp
	}

	mailer, err := newMailer(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler

	config.SetupMiddleware(e, cfg)

	if err := router.SetupRoutes(e, router.Dependencies{
		Config:   cfg,
		SQL:      db.SQL,
		Mongo:    db.Mongo,
		Mailer:   mailer,
		Firebase: verifier,
	}); err != nil {
		logger.Log.Fatal("Failed to set up routes", zap.Error(err))
	}

	go func() {
		logger.Log.Info("Starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
	logger.Log.Info("Server shut down")
}

// newMailer sends through SES when a sender address is configured and
// otherwise only logs the links
func newMailer(cfg *config.Config) (email.Mailer, error) {
	if cfg.SESFromEmail == "" {
		logger.Log.Info("SES_FROM_EMAIL not set, emails will be logged")
		return email.NewLogMailer(cfg.SiteURL), nil
	}
	return email.NewSESMailer(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.SiteURL)
}
