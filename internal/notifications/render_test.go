package notifications

import (
	"strings"
	"testing"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/anonto42/nano-blog/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSince(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{61 * time.Second, "1m ago"},
		{59 * time.Minute, "59m ago"},
		{3661 * time.Second, "1h ago"},
		{23 * time.Hour, "23h ago"},
		{50 * time.Hour, "2d ago"},
		{6 * 24 * time.Hour, "6d ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeSince(t0.Add(-tt.ago), t0), tt.ago.String())
	}

	assert.Equal(t, "Mar 01", TimeSince(time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC), t0))
}

func TestMessage(t *testing.T) {
	post := &models.Post{ID: 1, Title: "A fairly long post title that keeps going"}
	comment := &models.Comment{ID: 2, Content: "nice"}

	assert.Equal(t, "alice started following you", Message("alice", models.VerbFollowed, Target{}, false))
	assert.Equal(t, "alice liked your post 'A fairly long post title that ...'",
		Message("alice", models.VerbLikedPost, Target{Type: models.TargetPost, Post: post}, true))
	assert.Equal(t, "alice commented on your post 'Short...'",
		Message("alice", models.VerbCommented, Target{Type: models.TargetPost, Post: &models.Post{Title: "Short"}}, true))
	assert.Equal(t, "alice liked your comment",
		Message("alice", models.VerbLikedComment, Target{Type: models.TargetComment, Comment: comment}, true))
	assert.Equal(t, "alice replied to your comment",
		Message("alice", models.VerbReplied, Target{Type: models.TargetComment, Comment: comment}, true))
	assert.Equal(t, "alice liked_post", Message("alice", models.VerbLikedPost, Target{}, false))
}

func TestSummary(t *testing.T) {
	assert.Nil(t, Summary(Target{}, false))

	post := Summary(Target{Type: models.TargetPost, Post: &models.Post{ID: 1, Title: "Hello"}}, true)
	assert.Equal(t, map[string]any{"id": uint(1), "title": "Hello", "type": "post"}, post)

	long := strings.Repeat("x", 150)
	comment := Summary(Target{Type: models.TargetComment, Comment: &models.Comment{
		ID: 2, Content: long, Post: &models.Post{Title: "Parent"},
	}}, true)
	assert.Equal(t, strings.Repeat("x", 100)+"...", comment["content"])
	assert.Equal(t, "Parent", comment["post_title"])

	profile := Summary(Target{Type: models.TargetProfile, Profile: &models.Profile{
		ID: 3, User: &models.User{Username: "bob"},
	}}, true)
	assert.Equal(t, "bob", profile["username"])
	assert.Equal(t, "profile", profile["type"])
}

type staticResolver map[models.TargetRef]Target

func (r staticResolver) Resolve(ref models.TargetRef) (Target, bool) {
	target, ok := r[ref]
	return target, ok
}

func TestRendererView(t *testing.T) {
	ref := models.TargetRef{Type: models.TargetPost, ID: 9}
	renderer := NewRenderer(staticResolver{
		ref: {Type: models.TargetPost, Post: &models.Post{ID: 9, Title: "Go tips"}},
	}).WithClock(func() time.Time { return t0 })

	view := renderer.View(&models.Notification{
		ID:         1,
		ActorID:    4,
		Actor:      &models.User{ID: 4, Username: "carol"},
		Verb:       models.VerbLikedPost,
		TargetType: ref.Type,
		TargetID:   ref.ID,
		CreatedAt:  t0.Add(-2 * time.Hour),
	})

	assert.Equal(t, "carol liked your post 'Go tips...'", view.Message)
	assert.Equal(t, "2h ago", view.TimeSince)
	assert.Equal(t, "Go tips", view.TargetObject["title"])
	assert.Equal(t, models.UserCompact{ID: 4, Username: "carol"}, view.Actor)

	missing := renderer.View(&models.Notification{
		ID: 2, ActorID: 4, Actor: &models.User{ID: 4, Username: "carol"},
		Verb: models.VerbCommented, TargetType: models.TargetPost, TargetID: 99, CreatedAt: t0,
	})
	assert.Equal(t, "carol commented", missing.Message)
	assert.Nil(t, missing.TargetObject)
}

func TestStoreResolver(t *testing.T) {
	db := newTestDB(t)
	posts := repositories.NewPostgresPostRepository(db)
	comments := repositories.NewPostgresCommentRepository(db)
	resolver := NewStoreResolver(posts, comments, repositories.NewPostgresProfileRepository(db))

	author, profile := createUser(t, db, "dave")
	post := &models.Post{Title: "Resolvable", Content: "body of the post", AuthorID: author.ID}
	require.NoError(t, posts.CreatePost(post))
	comment := &models.Comment{Content: "first", AuthorID: author.ID, PostID: post.ID}
	require.NoError(t, comments.CreateComment(comment))
	require.NoError(t, posts.DeactivatePost(post.ID))

	target, ok := resolver.Resolve(models.TargetRef{Type: models.TargetPost, ID: post.ID})
	require.True(t, ok, "inactive posts still resolve")
	assert.Equal(t, author.ID, target.OwnerID())

	target, ok = resolver.Resolve(models.TargetRef{Type: models.TargetComment, ID: comment.ID})
	require.True(t, ok)
	assert.Equal(t, "Resolvable", target.Comment.Post.Title)

	target, ok = resolver.Resolve(models.TargetRef{Type: models.TargetProfile, ID: profile.ID})
	require.True(t, ok)
	assert.Equal(t, "dave", target.Profile.User.Username)

	_, ok = resolver.Resolve(models.TargetRef{Type: models.TargetPost, ID: 999})
	assert.False(t, ok)
	_, ok = resolver.Resolve(models.TargetRef{Type: "story", ID: post.ID})
	assert.False(t, ok)
}
