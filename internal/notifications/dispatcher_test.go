package notifications

import (
	"testing"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, repositories.NotificationRepository, repositories.NotificationSettingsRepository) {
	db := newTestDB(t)
	notifications := repositories.NewPostgresNotificationRepository(db)
	settings := repositories.NewPostgresNotificationSettingsRepository(db)
	clk := &clock{now: t0}
	engine := NewEngine(notifications).WithClock(clk.Now)
	return NewDispatcher(engine, settings), notifications, settings
}

func TestDispatcherReplyNotifiesParentAuthor(t *testing.T) {
	d, notifications, _ := newTestDispatcher(t)

	post := &models.Post{ID: 1, AuthorID: 10}
	parent := &models.Comment{ID: 5, PostID: 1, AuthorID: 20}
	parentID := parent.ID
	reply := &models.Comment{ID: 6, PostID: 1, AuthorID: 30, ParentID: &parentID}

	n := d.CommentCreated(reply, post, parent)
	require.NotNil(t, n)
	assert.EqualValues(t, 20, n.RecipientID)
	assert.Equal(t, models.VerbReplied, n.Verb)
	assert.Equal(t, models.TargetRef{Type: models.TargetComment, ID: 5}, n.Target())

	postAuthorUnread, err := notifications.GetUnreadCount(10)
	require.NoError(t, err)
	assert.Zero(t, postAuthorUnread)
}

func TestDispatcherTopLevelCommentNotifiesPostAuthor(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	post := &models.Post{ID: 1, AuthorID: 10}
	comment := &models.Comment{ID: 6, PostID: 1, AuthorID: 30}

	n := d.CommentCreated(comment, post, nil)
	require.NotNil(t, n)
	assert.EqualValues(t, 10, n.RecipientID)
	assert.Equal(t, models.VerbCommented, n.Verb)
	assert.Equal(t, models.TargetRef{Type: models.TargetPost, ID: 1}, n.Target())
}

func TestDispatcherReplyToOwnCommentIsSilent(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	parentID := uint(5)
	parent := &models.Comment{ID: 5, PostID: 1, AuthorID: 20}
	reply := &models.Comment{ID: 6, PostID: 1, AuthorID: 20, ParentID: &parentID}

	assert.Nil(t, d.CommentCreated(reply, &models.Post{ID: 1, AuthorID: 10}, parent))
}

func TestDispatcherFollowLifecycle(t *testing.T) {
	d, notifications, _ := newTestDispatcher(t)
	profile := &models.Profile{ID: 3, UserID: 20}

	n := d.FollowCreated(10, profile)
	require.NotNil(t, n)
	assert.Equal(t, models.VerbFollowed, n.Verb)
	assert.Equal(t, models.TargetRef{Type: models.TargetProfile, ID: 3}, n.Target())
	assert.False(t, n.IsRead)

	d.FollowDeleted(10, profile)
	count, err := notifications.GetUnreadCount(20)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDispatcherLikeVerbs(t *testing.T) {
	d, notifications, _ := newTestDispatcher(t)

	postLike := &models.Like{UserID: 1, TargetType: models.TargetPost, TargetID: 4}
	commentLike := &models.Like{UserID: 1, TargetType: models.TargetComment, TargetID: 4}

	require.Equal(t, models.VerbLikedPost, d.LikeCreated(postLike, 2).Verb)
	require.Equal(t, models.VerbLikedComment, d.LikeCreated(commentLike, 2).Verb)
	assert.Nil(t, d.LikeCreated(&models.Like{UserID: 1, TargetType: models.TargetProfile, TargetID: 4}, 2))

	d.LikeDeleted(postLike, 2)
	items, total, err := notifications.GetByRecipientID(2, models.NotificationFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, models.VerbLikedComment, items[0].Verb)
}

func TestDispatcherUserCreatedProvisionsSettings(t *testing.T) {
	d, _, settings := newTestDispatcher(t)

	d.UserCreated(&models.User{ID: 42})

	s, err := settings.GetOrCreate(42)
	require.NoError(t, err)
	assert.True(t, s.FollowNotifications)
	assert.True(t, s.ReplyNotifications)
}
