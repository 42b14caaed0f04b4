package services

import (
	"context"
	"testing"

	"github.com/anonto42/nano-blog/backend/internal/apperrors"
	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"learning", "golang", "web"}, Keywords("Learning the Golang for web, at it"))
	assert.Empty(t, Keywords("a to of"))
}

func TestRelevance(t *testing.T) {
	assert.Equal(t, 17, Relevance("Go tips and tricks", "go tips"))
	assert.Equal(t, 12, Relevance("Some useful go tips", "go tips"))
	assert.Equal(t, 2, Relevance("tips only", "go tips"))
	assert.Zero(t, Relevance("", "go"))
	assert.Zero(t, Relevance("nothing in common", "rust"))
}

func TestSearchAllAndRecordsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice, bob := f.user(t, "alice"), f.user(t, "gopher")
	post := f.post(t, alice, "Go channels explained")
	f.post(t, alice, "Baking bread")
	_, err := f.comments.Create(post.ID, bob.ID, &models.CreateCommentRequest{Content: "Go is great"})
	require.NoError(t, err)

	res, err := f.search.Search(ctx, SearchRequest{SearchQuery: models.SearchQuery{Q: " Go "}, UserID: alice.ID, IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "Go", res.Query)
	assert.Equal(t, models.SearchAll, res.SearchType)
	assert.Len(t, res.Posts, 1)
	assert.Len(t, res.Comments, 1)
	require.Len(t, res.Users, 1)
	assert.Equal(t, "gopher", res.Users[0].User.Username)
	assert.EqualValues(t, 3, res.TotalResults)

	history, err := f.search.History(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Go", history[0].Query)
	assert.EqualValues(t, 3, history[0].ResultsCount)

	_, err = f.search.Search(ctx, SearchRequest{SearchQuery: models.SearchQuery{Q: "go", Type: models.SearchPost}})
	require.NoError(t, err)

	trending, err := f.search.Trending(ctx)
	require.NoError(t, err)
	require.Len(t, trending, 1)
	assert.Equal(t, "go", trending[0].Query)
	assert.EqualValues(t, 2, trending[0].SearchCount)

	stats, err := f.search.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalSearches)

	cleared, err := f.search.ClearHistory(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cleared)
}

func TestSearchSingleTypeOnlyQueriesThatType(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "golang_fan")
	f.post(t, alice, "Go modules")

	res, err := f.search.Search(context.Background(), SearchRequest{SearchQuery: models.SearchQuery{Q: "go", Type: models.SearchUser}})
	require.NoError(t, err)
	assert.Empty(t, res.Posts)
	assert.Len(t, res.Users, 1)
	assert.EqualValues(t, 1, res.TotalResults)
}

func TestAutocomplete(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "gopher")
	f.post(t, alice, "Go generics")
	require.NoError(t, f.db.Create(&models.SearchSuggestion{Suggestion: "golang tutorials", Category: "general", IsActive: true}).Error)

	out, err := f.search.Autocomplete(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go generics", "@gopher"}, out.Suggestions)
	require.Len(t, out.ManualSuggestions, 1)
	assert.Equal(t, "golang tutorials", out.ManualSuggestions[0].Suggestion)

	short, err := f.search.Autocomplete(context.Background(), "g")
	require.NoError(t, err)
	assert.Empty(t, short.Suggestions)
}

func TestAdvancedSearchRanksByRelevance(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.user(t, "alice"), f.user(t, "bob")
	f.post(t, alice, "Notes about testing in go")
	f.post(t, bob, "Testing tips for everyone")

	res, err := f.search.Advanced(models.AdvancedSearchQuery{Q: "testing tips"}, 0)
	require.NoError(t, err)
	require.Len(t, res["posts"], 1)
	assert.Equal(t, "Testing tips for everyone", res["posts"][0].Title)

	res, err = f.search.Advanced(models.AdvancedSearchQuery{Q: "testing", Author: "ali"}, 0)
	require.NoError(t, err)
	require.Len(t, res["posts"], 1)
	assert.Equal(t, "alice", res["posts"][0].Author.Username)

	_, err = f.search.Advanced(models.AdvancedSearchQuery{Q: "  "}, 0)
	assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))
}
