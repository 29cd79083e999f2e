package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// MongoCommentStore реализует CommentStore для MongoDB.
type MongoCommentStore struct {
	col    *mongo.Collection
	logger *slog.Logger
}

func (s *MongoCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	comment.CreatedAt = time.Now().UTC()
	if _, err := s.col.InsertOne(ctx, comment); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create comment", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (s *MongoCommentStore) ListByWork(ctx context.Context, workID string) ([]*domain.Comment, error) {
	return s.find(ctx, bson.M{"workId": workID})
}

func (s *MongoCommentStore) ListByWorkIDs(ctx context.Context, workIDs []string) ([]*domain.Comment, error) {
	if len(workIDs) == 0 {
		return []*domain.Comment{}, nil
	}
	return s.find(ctx, bson.M{"workId": bson.M{"$in": workIDs}})
}

func (s *MongoCommentStore) ListAll(ctx context.Context) ([]*domain.Comment, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoCommentStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete comment", slog.String("commentID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return expectMatched(res.DeletedCount, ErrCommentNotFound)
}

func (s *MongoCommentStore) find(ctx context.Context, filter bson.M) ([]*domain.Comment, error) {
	cur, err := s.col.Find(ctx, filter, newestFirst())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list comments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return decodeAll[domain.Comment](ctx, cur)
}
