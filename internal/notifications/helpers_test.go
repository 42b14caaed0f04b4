package notifications

import (
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) (*models.User, *models.Profile) {
	t.Helper()
	user := &models.User{Email: username + "@example.com", Username: username, IsActive: true}
	require.NoError(t, db.Create(user).Error)
	profile := &models.Profile{UserID: user.ID}
	require.NoError(t, db.Create(profile).Error)
	return user, profile
}

func countNotifications(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&n).Error)
	return n
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }
