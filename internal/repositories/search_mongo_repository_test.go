package repositories

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newMongoSearchRepo connects to MONGO_URI and hands out a throwaway database.
func newMongoSearchRepo(t *testing.T) *MongoSearchHistoryRepository {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprintf("nano_blog_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db.Drop(ctx)
		client.Disconnect(ctx)
	})

	repo := NewMongoSearchHistoryRepository(db)
	require.NoError(t, repo.EnsureIndexes(ctx))
	return repo
}

func TestMongoSearchHistoryRoundTrip(t *testing.T) {
	repo := newMongoSearchRepo(t)
	ctx := context.Background()
	owner, other := uint(1), uint(2)
	base := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)

	for i, q := range []string{"golang", "gorm tips", "echo"} {
		require.NoError(t, repo.Record(ctx, &models.SearchHistory{
			UserID:       &owner,
			Query:        q,
			SearchType:   "all",
			ResultsCount: int64(i),
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Record(ctx, &models.SearchHistory{UserID: &other, Query: "golang", SearchType: "posts", CreatedAt: base}))
	require.NoError(t, repo.Record(ctx, &models.SearchHistory{Query: "anonymous", SearchType: "all", CreatedAt: base}))

	history, err := repo.GetHistory(ctx, owner, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "echo", history[0].Query)
	assert.Equal(t, "gorm tips", history[1].Query)
	require.NotNil(t, history[0].UserID)
	assert.Equal(t, owner, *history[0].UserID)

	cleared, err := repo.ClearHistory(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 3, cleared)

	history, err = repo.GetHistory(ctx, owner, 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	remaining, err := repo.GetHistory(ctx, other, 10)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestMongoPopularSearches(t *testing.T) {
	repo := newMongoSearchRepo(t)
	ctx := context.Background()
	now := time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.IncrementPopular(ctx, "golang", now))
	}
	require.NoError(t, repo.IncrementPopular(ctx, "go modules", now.Add(-time.Hour)))
	require.NoError(t, repo.IncrementPopular(ctx, "rust", now.AddDate(0, 0, -10)))

	trending, err := repo.GetTrending(ctx, now.AddDate(0, 0, -7), 10)
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, "golang", trending[0].Query)
	assert.EqualValues(t, 3, trending[0].SearchCount)

	matches, err := repo.GetPopularContaining(ctx, "GO", 10)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	none, err := repo.GetPopularContaining(ctx, "go.", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, repo.Record(ctx, &models.SearchHistory{Query: "golang", SearchType: "all", CreatedAt: now}))
	require.NoError(t, repo.Record(ctx, &models.SearchHistory{Query: "golang", SearchType: "all", CreatedAt: now.AddDate(0, 0, -30)}))
	require.NoError(t, repo.Record(ctx, &models.SearchHistory{Query: "rust", SearchType: "all", CreatedAt: now}))

	stats, err := repo.GetStats(ctx, now.AddDate(0, 0, -1), 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalSearches)
	assert.EqualValues(t, 2, stats.UniqueQueries)
	assert.EqualValues(t, 2, stats.RecentSearches)
	require.Len(t, stats.TopQueries, 2)
	assert.Equal(t, "golang", stats.TopQueries[0].Query)
}
