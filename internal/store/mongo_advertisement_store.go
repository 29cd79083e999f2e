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

// MongoAdvertisementStore реализует AdvertisementStore для MongoDB.
type MongoAdvertisementStore struct {
	col    *mongo.Collection
	logger *slog.Logger
}

func (s *MongoAdvertisementStore) Create(ctx context.Context, ad *domain.Advertisement) error {
	ad.CreatedAt = time.Now().UTC()
	ad.UpdatedAt = ad.CreatedAt
	if _, err := s.col.InsertOne(ctx, ad); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create advertisement", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create advertisement: %w", err)
	}
	s.logger.InfoContext(ctx, "Advertisement created in MongoDB", slog.String("advertisementID", ad.ID))
	return nil
}

func (s *MongoAdvertisementStore) GetByID(ctx context.Context, id string) (*domain.Advertisement, error) {
	var ad domain.Advertisement
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&ad); err != nil {
		return nil, s.notFoundOr(ctx, err)
	}
	return &ad, nil
}

func (s *MongoAdvertisementStore) List(ctx context.Context, activeOnly bool) ([]*domain.Advertisement, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	cur, err := s.col.Find(ctx, filter, newestFirst())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list advertisements", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list advertisements: %w", err)
	}
	return decodeAll[domain.Advertisement](ctx, cur)
}

func (s *MongoAdvertisementStore) Rename(ctx context.Context, id, name string) (*domain.Advertisement, error) {
	update := bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now().UTC()}}
	return s.findAndUpdate(ctx, id, update)
}

// ToggleActive использует update-пайплайн: флаг инвертируется на стороне сервера.
func (s *MongoAdvertisementStore) ToggleActive(ctx context.Context, id string) (*domain.Advertisement, error) {
	update := bson.A{
		bson.M{"$set": bson.M{
			"isActive":  bson.M{"$not": bson.A{"$isActive"}},
			"updatedAt": time.Now().UTC(),
		}},
	}
	return s.findAndUpdate(ctx, id, update)
}

func (s *MongoAdvertisementStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete advertisement", slog.String("advertisementID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete advertisement: %w", err)
	}
	return expectMatched(res.DeletedCount, ErrAdvertisementNotFound)
}

func (s *MongoAdvertisementStore) findAndUpdate(ctx context.Context, id string, update interface{}) (*domain.Advertisement, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ad domain.Advertisement
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&ad); err != nil {
		return nil, s.notFoundOr(ctx, err)
	}
	return &ad, nil
}

func (s *MongoAdvertisementStore) notFoundOr(ctx context.Context, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrAdvertisementNotFound
	}
	s.logger.ErrorContext(ctx, "Failed to query advertisement", slog.String("error", err.Error()))
	return fmt.Errorf("failed to query advertisement: %w", err)
}
