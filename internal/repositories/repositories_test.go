package repositories

import (
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

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

func newUser(t *testing.T, repo *PostgresUserRepository, username string) *models.User {
	t.Helper()
	user := &models.User{Email: username + "@example.com", Username: username, IsActive: true}
	require.NoError(t, repo.CreateWithProfile(user))
	return user
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, size, wantPage, wantSize int
	}{
		{0, 0, 1, DefaultPageSize},
		{-3, 5, 1, 5},
		{4, 500, 4, MaxPageSize},
	}
	for _, tc := range cases {
		page, size := NormalizePage(tc.page, tc.size)
		assert.Equal(t, tc.wantPage, page)
		assert.Equal(t, tc.wantSize, size)
	}
}

func TestUserLookups(t *testing.T) {
	users := NewPostgresUserRepository(newTestDB(t))
	newUser(t, users, "hank")

	user, err := users.GetByUsername("hank")
	require.NoError(t, err)
	require.NotNil(t, user.Profile)
	assert.Equal(t, user.ID, user.Profile.UserID)

	exists, err := users.EmailExists("HANK@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = users.GetByEmail("HANK@EXAMPLE.COM")
	assert.NoError(t, err)

	_, err = users.GetByEmail("missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowEdgesAreUnique(t *testing.T) {
	db := newTestDB(t)
	users := NewPostgresUserRepository(db)
	profiles := NewPostgresProfileRepository(db)
	follows := NewPostgresFollowRepository(db)
	ivy, jack := newUser(t, users, "ivy"), newUser(t, users, "jack")
	jackProfile, err := profiles.GetByUserID(jack.ID)
	require.NoError(t, err)

	require.NoError(t, follows.CreateFollow(&models.Follow{FollowerID: ivy.ID, FollowingID: jackProfile.ID}))
	err = follows.CreateFollow(&models.Follow{FollowerID: ivy.ID, FollowingID: jackProfile.ID})
	assert.ErrorIs(t, err, ErrDuplicate)

	followers, err := follows.GetFollowers(jackProfile.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "ivy", followers[0].Username)

	ids, err := follows.GetFollowedUserIDs(ivy.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{jack.ID}, ids)

	require.NoError(t, follows.DeleteFollow(ivy.ID, jackProfile.ID))
	assert.ErrorIs(t, follows.DeleteFollow(ivy.ID, jackProfile.ID), ErrNotFound)
}

func TestLikesAreUniquePerUserAndTarget(t *testing.T) {
	db := newTestDB(t)
	users := NewPostgresUserRepository(db)
	likes := NewPostgresLikeRepository(db)
	mona, ned := newUser(t, users, "mona"), newUser(t, users, "ned")
	post := models.TargetRef{Type: models.TargetPost, ID: 5}

	require.NoError(t, likes.CreateLike(&models.Like{UserID: mona.ID, TargetType: post.Type, TargetID: post.ID}))
	err := likes.CreateLike(&models.Like{UserID: mona.ID, TargetType: post.Type, TargetID: post.ID})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, likes.CreateLike(&models.Like{UserID: ned.ID, TargetType: post.Type, TargetID: post.ID}))
	require.NoError(t, likes.CreateLike(&models.Like{UserID: mona.ID, TargetType: models.TargetComment, TargetID: post.ID}))

	count, err := likes.CountLikes(post)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, likes.DeleteLike(mona.ID, post))
	assert.ErrorIs(t, likes.DeleteLike(mona.ID, post), ErrNotFound)
}

func TestNotificationGroupedByDay(t *testing.T) {
	db := newTestDB(t)
	users := NewPostgresUserRepository(db)
	repo := NewPostgresNotificationRepository(db)
	kim, leo := newUser(t, users, "kim"), newUser(t, users, "leo")

	now := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)
	for i, at := range []time.Time{
		now.Add(-time.Hour),
		now.Add(-12 * time.Hour),
		now.AddDate(0, 0, -3),
		now.AddDate(0, 0, -30),
	} {
		require.NoError(t, repo.CreateNotification(&models.Notification{
			RecipientID: kim.ID,
			ActorID:     leo.ID,
			Verb:        models.VerbFollowed,
			TargetType:  models.TargetProfile,
			TargetID:    uint(i + 1),
			CreatedAt:   at,
		}))
	}

	today, yesterday, thisWeek, older, err := repo.GetGrouped(kim.ID, now)
	require.NoError(t, err)
	assert.Len(t, today, 1)
	assert.Len(t, yesterday, 1)
	assert.Len(t, thisWeek, 1)
	assert.Len(t, older, 1)
	assert.Equal(t, "leo", today[0].Actor.Username)
}

func TestNotificationDeleteByKeyMatchesWholeTuple(t *testing.T) {
	db := newTestDB(t)
	users := NewPostgresUserRepository(db)
	repo := NewPostgresNotificationRepository(db)
	kim, leo := newUser(t, users, "kim"), newUser(t, users, "leo")

	key := NotificationKey{RecipientID: kim.ID, ActorID: leo.ID, Verb: models.VerbLikedPost, Target: models.TargetRef{Type: models.TargetPost, ID: 3}}
	for _, target := range []uint{3, 4} {
		require.NoError(t, repo.CreateNotification(&models.Notification{
			RecipientID: kim.ID,
			ActorID:     leo.ID,
			Verb:        models.VerbLikedPost,
			TargetType:  models.TargetPost,
			TargetID:    target,
		}))
	}

	n, err := repo.DeleteByKey(key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	count, err := repo.GetUnreadCount(kim.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = repo.FindLatestSince(key, time.Time{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationDeleteByKeyWrapsStoreErrors(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	require.NoError(t, db.Migrator().DropTable(&models.Notification{}))

	n, err := repo.DeleteByKey(NotificationKey{RecipientID: 1, ActorID: 2, Verb: models.VerbFollowed, Target: models.TargetRef{Type: models.TargetProfile, ID: 1}})
	require.Error(t, err)
	assert.Zero(t, n)
	assert.Contains(t, err.Error(), "delete followed notifications on profile:1")
}
