package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/auth"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/notifications"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/anonto42/nano-blog/backend/pkg/config"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db            *gorm.DB
	userRepo      *repositories.PostgresUserRepository
	postRepo      *repositories.PostgresPostRepository
	commentRepo   *repositories.PostgresCommentRepository
	likeRepo      *repositories.PostgresLikeRepository
	notifications repositories.NotificationRepository
	settings      repositories.NotificationSettingsRepository
	mailer        *recordingMailer

	accounts *AccountService
	profiles *ProfileService
	posts    *PostService
	comments *CommentService
	likes    *LikeService
	notes    *NotificationService
	search   *SearchService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := config.OpenSQL("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{
		db:            db,
		userRepo:      repositories.NewPostgresUserRepository(db),
		postRepo:      repositories.NewPostgresPostRepository(db),
		commentRepo:   repositories.NewPostgresCommentRepository(db),
		likeRepo:      repositories.NewPostgresLikeRepository(db),
		notifications: repositories.NewPostgresNotificationRepository(db),
		settings:      repositories.NewPostgresNotificationSettingsRepository(db),
		mailer:        &recordingMailer{},
	}
	profiles := repositories.NewPostgresProfileRepository(db)
	follows := repositories.NewPostgresFollowRepository(db)
	search := repositories.NewPostgresSearchRepository(db)

	engine := notifications.NewEngine(f.notifications)
	dispatcher := notifications.NewDispatcher(engine, f.settings)
	renderer := notifications.NewRenderer(notifications.NewStoreResolver(f.postRepo, f.commentRepo, profiles))
	issuer := auth.NewIssuer("test-secret", time.Minute, time.Hour)

	f.accounts = NewAccountService(f.userRepo, issuer, f.mailer, dispatcher, nil).WithBcryptCost(bcrypt.MinCost)
	f.profiles = NewProfileService(f.userRepo, profiles, follows, dispatcher)
	f.posts = NewPostService(f.postRepo, f.commentRepo, f.likeRepo, f.userRepo, follows)
	f.comments = NewCommentService(f.commentRepo, f.postRepo, f.likeRepo, f.userRepo, dispatcher)
	f.likes = NewLikeService(f.likeRepo, f.postRepo, f.commentRepo, dispatcher)
	f.notes = NewNotificationService(f.notifications, f.settings, renderer)
	f.search = NewSearchService(f.postRepo, f.commentRepo, profiles, f.userRepo, f.likeRepo, search, search)
	return f
}

// user creates a verified account with a profile
func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{
		Email:      username + "@example.com",
		Username:   username,
		Password:   string(hash),
		IsActive:   true,
		IsVerified: true,
		Role:       models.RoleUser,
	}
	require.NoError(t, f.userRepo.CreateWithProfile(u))
	return u
}

func (f *fixture) post(t *testing.T, author *models.User, title string) *models.PostView {
	t.Helper()
	p, err := f.posts.Create(author.ID, &models.CreatePostRequest{Title: title, Content: "Some content for " + title})
	require.NoError(t, err)
	return p
}

func (f *fixture) unread(t *testing.T, recipient *models.User) []models.Notification {
	t.Helper()
	items, _, err := f.notifications.GetByRecipientID(recipient.ID, models.NotificationFilter{IsRead: boolPtr(false)})
	require.NoError(t, err)
	return items
}

func boolPtr(b bool) *bool { return &b }

type sentMail struct {
	kind, to, token string
}

type recordingMailer struct {
	sent []sentMail
}

func (m *recordingMailer) SendVerificationEmail(_ context.Context, toEmail, _, token string) error {
	m.sent = append(m.sent, sentMail{kind: "verify", to: toEmail, token: token})
	return nil
}

func (m *recordingMailer) SendPasswordResetEmail(_ context.Context, toEmail, _, token string) error {
	m.sent = append(m.sent, sentMail{kind: "reset", to: toEmail, token: token})
	return nil
}
