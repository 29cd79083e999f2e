package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Имена коллекций MongoDB
const (
	colUsers          = "users"
	colWorks          = "works"
	colRatings        = "ratings"
	colSiteReviews    = "siteReviews"
	colComments       = "comments"
	colAdvertisements = "advertisements"
	colContacts       = "contactMessages"
)

// ConnectMongo подключается к MongoDB и проверяет соединение ping-запросом.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration, logger *slog.Logger) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo connection string cannot be empty")
	}
	logger.InfoContext(ctx, "Connecting to MongoDB...")
	opts := options.Client().ApplyURI(uri).SetTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to MongoDB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.ErrorContext(ctx, "Failed to ping MongoDB", slog.String("error", err.Error()))
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	logger.InfoContext(ctx, "Successfully connected to MongoDB.")
	return client, nil
}

// EnsureMongoIndexes создает индексы, на которых держатся инварианты уникальности.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database, logger *slog.Logger) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("users_email_unique").SetUnique(true)},
			{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetName("users_reset_token").SetSparse(true)},
		},
		colWorks: {
			{Keys: bson.D{{Key: "createdBy", Value: 1}}, Options: options.Index().SetName("works_created_by")},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("works_created_at")},
		},
		colRatings: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "workId", Value: 1}}, Options: options.Index().SetName("ratings_user_work_unique").SetUnique(true)},
			{Keys: bson.D{{Key: "workId", Value: 1}}, Options: options.Index().SetName("ratings_work")},
		},
		colSiteReviews: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetName("site_reviews_user_unique").SetUnique(true)},
		},
		colComments: {
			{Keys: bson.D{{Key: "workId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("comments_work_created_at")},
		},
		colAdvertisements: {
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("ads_active_created_at")},
		},
		colContacts: {
			{Keys: bson.D{{Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("contacts_read_created_at")},
		},
	}
	for col, models := range indexes {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			logger.ErrorContext(ctx, "Failed to create indexes", slog.String("collection", col), slog.String("error", err.Error()))
			return fmt.Errorf("failed to create indexes for %s: %w", col, err)
		}
	}
	logger.InfoContext(ctx, "MongoDB indexes ensured.")
	return nil
}

// NewMongoStores создает набор хранилищ поверх одной базы MongoDB.
func NewMongoStores(db *mongo.Database, logger *slog.Logger) *Stores {
	return &Stores{
		Users:          &MongoUserStore{col: db.Collection(colUsers), logger: logger},
		Works:          &MongoWorkStore{col: db.Collection(colWorks), logger: logger},
		Ratings:        &MongoRatingStore{col: db.Collection(colRatings), logger: logger},
		SiteReviews:    &MongoSiteReviewStore{col: db.Collection(colSiteReviews), logger: logger},
		Comments:       &MongoCommentStore{col: db.Collection(colComments), logger: logger},
		Advertisements: &MongoAdvertisementStore{col: db.Collection(colAdvertisements), logger: logger},
		Contacts:       &MongoContactStore{col: db.Collection(colContacts), logger: logger},
	}
}

// newestFirst - сортировка по дате создания, новые первыми.
func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// decodeAll читает курсор целиком и всегда возвращает непустой срез.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]*T, error) {
	defer cur.Close(ctx)
	out := []*T{}
	for cur.Next(ctx) {
		var item T
		if err := cur.Decode(&item); err != nil {
			return nil, err
		}
		out = append(out, &item)
	}
	return out, cur.Err()
}

// expectMatched переводит нулевое число совпадений в notFound.
func expectMatched(matched int64, notFound error) error {
	if matched == 0 {
		return notFound
	}
	return nil
}

// containsFold строит регулярное выражение для регистронезависимого поиска подстроки.
func containsFold(s string) bson.M {
	return bson.M{"$regex": regexpQuote(s), "$options": "i"}
}

func regexpQuote(s string) string { return regexp.QuoteMeta(s) }
