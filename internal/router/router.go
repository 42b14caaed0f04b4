package router

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/auth"
	"github.com/anonto42/nano-blog/backend/internal/email"
	"github.com/anonto42/nano-blog/backend/internal/handlers"
	"github.com/anonto42/nano-blog/backend/internal/logger"
	"github.com/anonto42/nano-blog/backend/internal/middleware"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/notifications"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/internal/services"
	"github.com/anonto42/nano-blog/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the collaborators built in main
type Dependencies struct {
	Config   *config.Config
	SQL      *gorm.DB
	Mongo    *mongo.Client
	Mailer   email.Mailer
	Firebase services.IDTokenVerifier // nil disables Firebase login
}

// SetupRoutes migrates the schema, builds repositories and services, and
// registers every route
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	if err := deps.SQL.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	logger.Log.Info("Auto-migrations completed for all models")

	e.GET("/health", handlers.HealthCheck)
	if deps.Config.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	// --- Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.SQL)
	profileRepo := repositories.NewPostgresProfileRepository(deps.SQL)
	followRepo := repositories.NewPostgresFollowRepository(deps.SQL)
	postRepo := repositories.NewPostgresPostRepository(deps.SQL)
	commentRepo := repositories.NewPostgresCommentRepository(deps.SQL)
	likeRepo := repositories.NewPostgresLikeRepository(deps.SQL)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.SQL)
	settingsRepo := repositories.NewPostgresNotificationSettingsRepository(deps.SQL)
	searchRepo := repositories.NewPostgresSearchRepository(deps.SQL)

	historyRepo, err := searchHistory(deps, searchRepo)
	if err != nil {
		return err
	}

	// --- Notifications ---
	engine := notifications.NewEngine(notificationRepo)
	dispatcher := notifications.NewDispatcher(engine, settingsRepo)
	renderer := notifications.NewRenderer(notifications.NewStoreResolver(postRepo, commentRepo, profileRepo))

	// --- Services ---
	issuer := auth.NewIssuer(deps.Config.JWTSecret, deps.Config.AccessTokenTTL, deps.Config.RefreshTokenTTL)
	accountService := services.NewAccountService(userRepo, issuer, deps.Mailer, dispatcher, deps.Firebase)
	profileService := services.NewProfileService(userRepo, profileRepo, followRepo, dispatcher)
	postService := services.NewPostService(postRepo, commentRepo, likeRepo, userRepo, followRepo)
	commentService := services.NewCommentService(commentRepo, postRepo, likeRepo, userRepo, dispatcher)
	likeService := services.NewLikeService(likeRepo, postRepo, commentRepo, dispatcher)
	notificationService := services.NewNotificationService(notificationRepo, settingsRepo, renderer)
	searchService := services.NewSearchService(postRepo, commentRepo, profileRepo, userRepo, likeRepo, historyRepo, searchRepo)

	// Anonymous callers pass; routes that need a user add middleware.RequireUser
	api := e.Group("/api/v1", middleware.OptionalJWTAuth(issuer))
	api.GET("", handlers.APIRoot)

	handlers.NewAuthHandler(accountService).RegisterAuthRoutes(api.Group("/auth"))
	handlers.NewUserHandler(profileService).RegisterProfileRoutes(api.Group("/auth"))
	handlers.NewFollowHandler(profileService).RegisterFollowRoutes(api.Group("/auth"))
	handlers.NewPostHandler(postService).RegisterPostRoutes(api)
	handlers.NewFeedHandler(postService).RegisterFeedRoutes(api)
	handlers.NewLikeHandler(likeService).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(commentService).RegisterCommentRoutes(api)
	handlers.NewNotificationHandler(notificationService).RegisterNotificationRoutes(api)
	handlers.NewSearchHandler(searchService).RegisterSearchRoutes(api)

	logger.Log.Info("All routes configured", zap.Int("routes", len(e.Routes())))
	return nil
}

// searchHistory keeps search history in MongoDB when a client is configured
func searchHistory(deps Dependencies, fallback *repositories.PostgresSearchRepository) (repositories.SearchHistoryRepository, error) {
	if deps.Mongo == nil {
		return fallback, nil
	}
	repo := repositories.NewMongoSearchHistoryRepository(deps.Mongo.Database(deps.Config.MongoDatabase))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create search indexes: %w", err)
	}
	logger.Log.Info("Search history stored in MongoDB", zap.String("database", deps.Config.MongoDatabase))
	return repo, nil
}
