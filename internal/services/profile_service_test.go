package services

import (
	"testing"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowThenUnfollow(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")

	profile, err := f.profiles.Follow(alice.ID, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.FollowersCount)

	unread := f.unread(t, bob)
	require.Len(t, unread, 1)
	assert.Equal(t, models.VerbFollowed, unread[0].Verb)
	assert.Equal(t, models.TargetRef{Type: models.TargetProfile, ID: profile.ID}, unread[0].Target())

	views, err := f.notes.Unread(bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, views.Count)
	assert.Equal(t, "alice started following you", views.Notifications[0].Message)

	profile, err = f.profiles.Unfollow(alice.ID, "bob")
	require.NoError(t, err)
	assert.Zero(t, profile.FollowersCount)
	assert.Empty(t, f.unread(t, bob))
}

func TestFollowErrors(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")

	_, err := f.profiles.Follow(alice.ID, "alice")
	assert.Equal(t, "Cannot follow yourself", apperrors.As(err).Fields["username"])

	_, err = f.profiles.Follow(alice.ID, "nobody")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = f.profiles.Follow(alice.ID, "bob")
	require.NoError(t, err)
	_, err = f.profiles.Follow(alice.ID, "bob")
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))

	_, err = f.profiles.Unfollow(alice.ID, "bob")
	require.NoError(t, err)
	_, err = f.profiles.Unfollow(alice.ID, "bob")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestFollowersAndFollowing(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	f.user(t, "carol")

	_, err := f.profiles.Follow(alice.ID, "carol")
	require.NoError(t, err)
	_, err = f.profiles.Follow(bob.ID, "carol")
	require.NoError(t, err)

	followers, err := f.profiles.Followers("carol")
	require.NoError(t, err)
	require.Len(t, followers, 2)
	names := []string{followers[0].User.Username, followers[1].User.Username}
	assert.ElementsMatch(t, []string{"alice", "bob"}, names)

	following, err := f.profiles.Following("alice")
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "carol", following[0].User.Username)
	assert.EqualValues(t, 2, following[0].FollowersCount)
}

func TestUpdateOwnProfile(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	bio := "Gopher and writer"
	profile, err := f.profiles.UpdateOwn(alice.ID, &models.UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, bio, profile.Bio)

	got, err := f.profiles.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, bio, got.Bio)
}
