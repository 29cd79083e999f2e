package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// MongoRatingStore реализует RatingStore для MongoDB.
// Уникальность пары (userId, workId) обеспечивается индексом ratings_user_work_unique.
type MongoRatingStore struct {
	col    *mongo.Collection
	logger *slog.Logger
}

func (s *MongoRatingStore) Upsert(ctx context.Context, userID, workID string, value int) (*domain.Rating, error) {
	rating, err := s.upsertOnce(ctx, userID, workID, value)
	if mongo.IsDuplicateKeyError(err) {
		// Параллельная вставка той же пары: вторая попытка станет обновлением.
		rating, err = s.upsertOnce(ctx, userID, workID, value)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to upsert rating", slog.String("userID", userID), slog.String("workID", workID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to upsert rating: %w", err)
	}
	return rating, nil
}

func (s *MongoRatingStore) upsertOnce(ctx context.Context, userID, workID string, value int) (*domain.Rating, error) {
	now := time.Now().UTC()
	filter := bson.M{"userId": userID, "workId": workID}
	update := bson.M{
		"$set":         bson.M{"ratingValue": value, "updatedAt": now},
		"$setOnInsert": bson.M{"_id": uuid.NewString(), "createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rating domain.Rating
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rating); err != nil {
		return nil, err
	}
	return &rating, nil
}

func (s *MongoRatingStore) Aggregate(ctx context.Context, workID string) (*domain.AggregatedRating, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"workId": workID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$ratingValue"},
			"count":   bson.M{"$sum": 1},
		}}},
	}
	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to aggregate ratings", slog.String("workID", workID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	defer cur.Close(ctx)

	result := &domain.AggregatedRating{WorkID: workID}
	if cur.Next(ctx) {
		var doc struct {
			Average float64 `bson:"average"`
			Count   int64   `bson:"count"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode rating aggregate: %w", err)
		}
		result.Average = doc.Average
		result.Count = doc.Count
	}
	return result, cur.Err()
}

func (s *MongoRatingStore) ListByWorkIDs(ctx context.Context, workIDs []string) ([]*domain.Rating, error) {
	if len(workIDs) == 0 {
		return []*domain.Rating{}, nil
	}
	return s.find(ctx, bson.M{"workId": bson.M{"$in": workIDs}})
}

func (s *MongoRatingStore) ListAll(ctx context.Context) ([]*domain.Rating, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoRatingStore) find(ctx context.Context, filter bson.M) ([]*domain.Rating, error) {
	cur, err := s.col.Find(ctx, filter, newestFirst())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list ratings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return decodeAll[domain.Rating](ctx, cur)
}

// MongoSiteReviewStore реализует SiteReviewStore для MongoDB.
type MongoSiteReviewStore struct {
	col    *mongo.Collection
	logger *slog.Logger
}

func (s *MongoSiteReviewStore) Upsert(ctx context.Context, review *domain.SiteReview) (*domain.SiteReview, error) {
	now := time.Now().UTC()
	id := review.ID
	if id == "" {
		id = uuid.NewString()
	}
	filter := bson.M{"userId": review.UserID}
	update := bson.M{
		"$set": bson.M{
			"username":    review.Username,
			"ratingValue": review.Value,
			"description": review.Description,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{"_id": id, "createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.SiteReview
	err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		err = s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to upsert site review", slog.String("userID", review.UserID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to upsert site review: %w", err)
	}
	return &stored, nil
}

func (s *MongoSiteReviewStore) List(ctx context.Context) ([]*domain.SiteReview, error) {
	cur, err := s.col.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list site reviews", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list site reviews: %w", err)
	}
	return decodeAll[domain.SiteReview](ctx, cur)
}
