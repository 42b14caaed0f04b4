package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type searchHistoryDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       *int64             `bson:"user_id,omitempty"`
	Query        string             `bson:"query"`
	SearchType   string             `bson:"search_type"`
	ResultsCount int64              `bson:"results_count"`
	IPAddress    string             `bson:"ip_address,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d searchHistoryDoc) toModel() models.SearchHistory {
	h := models.SearchHistory{
		Query:        d.Query,
		SearchType:   d.SearchType,
		ResultsCount: d.ResultsCount,
		IPAddress:    d.IPAddress,
		CreatedAt:    d.CreatedAt,
	}
	if d.UserID != nil {
		id := uint(*d.UserID)
		h.UserID = &id
	}
	return h
}

type popularSearchDoc struct {
	Query        string    `bson:"query"`
	SearchCount  int64     `bson:"search_count"`
	LastSearched time.Time `bson:"last_searched"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d popularSearchDoc) toModel() models.PopularSearch {
	return models.PopularSearch{
		Query:        d.Query,
		SearchCount:  d.SearchCount,
		LastSearched: d.LastSearched,
		CreatedAt:    d.CreatedAt,
	}
}

// MongoSearchHistoryRepository implements SearchHistoryRepository for MongoDB
type MongoSearchHistoryRepository struct {
	history *mongo.Collection
	popular *mongo.Collection
}

// NewMongoSearchHistoryRepository creates a new MongoSearchHistoryRepository
func NewMongoSearchHistoryRepository(db *mongo.Database) *MongoSearchHistoryRepository {
	return &MongoSearchHistoryRepository{
		history: db.Collection("search_history"),
		popular: db.Collection("popular_searches"),
	}
}

// EnsureIndexes creates the indexes the queries rely on
func (r *MongoSearchHistoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.history.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("search_history indexes: %w", err)
	}
	_, err = r.popular.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "query", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "search_count", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("popular_searches indexes: %w", err)
	}
	return nil
}

func (r *MongoSearchHistoryRepository) Record(ctx context.Context, entry *models.SearchHistory) error {
	doc := searchHistoryDoc{
		Query:        entry.Query,
		SearchType:   entry.SearchType,
		ResultsCount: entry.ResultsCount,
		IPAddress:    entry.IPAddress,
		CreatedAt:    entry.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now()
	}
	if entry.UserID != nil {
		id := int64(*entry.UserID)
		doc.UserID = &id
	}
	_, err := r.history.InsertOne(ctx, doc)
	return err
}

func (r *MongoSearchHistoryRepository) GetHistory(ctx context.Context, userID uint, limit int) ([]models.SearchHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.history.Find(ctx, bson.M{"user_id": int64(userID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []searchHistoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	history := make([]models.SearchHistory, 0, len(docs))
	for _, d := range docs {
		history = append(history, d.toModel())
	}
	return history, nil
}

func (r *MongoSearchHistoryRepository) ClearHistory(ctx context.Context, userID uint) (int64, error) {
	res, err := r.history.DeleteMany(ctx, bson.M{"user_id": int64(userID)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoSearchHistoryRepository) IncrementPopular(ctx context.Context, query string, at time.Time) error {
	update := bson.M{
		"$inc":         bson.M{"search_count": 1},
		"$set":         bson.M{"last_searched": at},
		"$setOnInsert": bson.M{"created_at": at},
	}
	_, err := r.popular.UpdateOne(ctx, bson.M{"query": query}, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoSearchHistoryRepository) findPopular(ctx context.Context, filter bson.M, limit int) ([]models.PopularSearch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "search_count", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.popular.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []popularSearchDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	popular := make([]models.PopularSearch, 0, len(docs))
	for _, d := range docs {
		popular = append(popular, d.toModel())
	}
	return popular, nil
}

func (r *MongoSearchHistoryRepository) GetTrending(ctx context.Context, since time.Time, limit int) ([]models.PopularSearch, error) {
	return r.findPopular(ctx, bson.M{"last_searched": bson.M{"$gte": since}}, limit)
}

func (r *MongoSearchHistoryRepository) GetPopularContaining(ctx context.Context, query string, limit int) ([]models.PopularSearch, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return r.findPopular(ctx, bson.M{"query": pattern}, limit)
}

func (r *MongoSearchHistoryRepository) GetStats(ctx context.Context, recentSince time.Time, topLimit int) (*models.SearchStats, error) {
	var stats models.SearchStats
	var err error

	if stats.TotalSearches, err = r.history.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	queries, err := r.history.Distinct(ctx, "query", bson.M{})
	if err != nil {
		return nil, err
	}
	stats.UniqueQueries = int64(len(queries))
	if stats.RecentSearches, err = r.history.CountDocuments(ctx, bson.M{"created_at": bson.M{"$gte": recentSince}}); err != nil {
		return nil, err
	}
	if stats.TopQueries, err = r.findPopular(ctx, bson.M{}, topLimit); err != nil {
		return nil, err
	}
	return &stats, nil
}
