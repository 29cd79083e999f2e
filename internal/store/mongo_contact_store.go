package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// MongoContactStore реализует ContactStore для MongoDB.
type MongoContactStore struct {
	col    *mongo.Collection
	logger *slog.Logger
}

func (s *MongoContactStore) Create(ctx context.Context, msg *domain.ContactMessage) error {
	msg.CreatedAt = time.Now().UTC()
	msg.UpdatedAt = msg.CreatedAt
	if _, err := s.col.InsertOne(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create contact message", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create contact message: %w", err)
	}
	return nil
}

func (s *MongoContactStore) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	var msg domain.ContactMessage
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact message: %w", err)
	}
	return &msg, nil
}

func (s *MongoContactStore) List(ctx context.Context, unreadOnly bool) ([]*domain.ContactMessage, error) {
	filter := bson.M{}
	if unreadOnly {
		filter["isRead"] = false
	}
	cur, err := s.col.Find(ctx, filter, newestFirst())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list contact messages", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return decodeAll[domain.ContactMessage](ctx, cur)
}

func (s *MongoContactStore) MarkRead(ctx context.Context, id string) (*domain.ContactMessage, error) {
	update := bson.M{"$set": bson.M{"isRead": true, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var msg domain.ContactMessage
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&msg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrContactNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to mark contact message read", slog.String("contactID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to mark contact message read: %w", err)
	}
	return &msg, nil
}

func (s *MongoContactStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete contact message", slog.String("contactID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete contact message: %w", err)
	}
	return expectMatched(res.DeletedCount, ErrContactNotFound)
}
