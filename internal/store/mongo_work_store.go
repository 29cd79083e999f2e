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

// MongoWorkStore реализует WorkStore для MongoDB.
type MongoWorkStore struct {
	col    *mongo.Collection
	logger *slog.Logger
}

func (s *MongoWorkStore) Create(ctx context.Context, work *domain.Work) error {
	work.CreatedAt = time.Now().UTC()
	work.UpdatedAt = work.CreatedAt
	if _, err := s.col.InsertOne(ctx, work); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create work in MongoDB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create work: %w", err)
	}
	s.logger.InfoContext(ctx, "Work created in MongoDB", slog.String("workID", work.ID))
	return nil
}

func (s *MongoWorkStore) GetByID(ctx context.Context, id string) (*domain.Work, error) {
	var work domain.Work
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&work); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWorkNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get work", slog.String("workID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get work: %w", err)
	}
	return &work, nil
}

func (s *MongoWorkStore) GetOwner(ctx context.Context, id string) (string, error) {
	var doc struct {
		CreatedBy string `bson:"createdBy"`
	}
	opts := options.FindOne().SetProjection(bson.M{"createdBy": 1})
	if err := s.col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrWorkNotFound
		}
		return "", fmt.Errorf("failed to get work owner: %w", err)
	}
	return doc.CreatedBy, nil
}

// Update перезаписывает изменяемые поля; владелец и дата создания не трогаются.
func (s *MongoWorkStore) Update(ctx context.Context, work *domain.Work) error {
	work.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"type":              work.Type,
		"nameArabic":        work.NameArabic,
		"nameEnglish":       work.NameEnglish,
		"year":              work.Year,
		"director":          work.Director,
		"assistantDirector": work.AssistantDirector,
		"genre":             work.Genre,
		"cast":              []string(work.Cast),
		"country":           work.Country,
		"filmingLocation":   work.FilmingLocation,
		"summary":           work.Summary,
		"updatedAt":         work.UpdatedAt,
	}
	unset := bson.M{}
	optional := map[string]interface{}{
		"posterUrl":      work.PosterURL,
		"posterPublicId": work.PosterPublicID,
	}
	for key, v := range optional {
		if v == "" {
			unset[key] = ""
		} else {
			set[key] = v
		}
	}
	if work.SeasonsCount != nil {
		set["seasonsCount"] = *work.SeasonsCount
	} else {
		unset["seasonsCount"] = ""
	}
	if work.EpisodesCount != nil {
		set["episodesCount"] = *work.EpisodesCount
	} else {
		unset["episodesCount"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.col.UpdateByID(ctx, work.ID, update)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update work", slog.String("workID", work.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update work: %w", err)
	}
	return expectMatched(res.MatchedCount, ErrWorkNotFound)
}

func (s *MongoWorkStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete work", slog.String("workID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete work: %w", err)
	}
	return expectMatched(res.DeletedCount, ErrWorkNotFound)
}

func (s *MongoWorkStore) List(ctx context.Context, params WorkListParams) ([]*domain.Work, int, error) {
	filter := bson.M{}
	if params.CreatedBy != "" {
		filter["createdBy"] = params.CreatedBy
	}
	if params.Type != "" {
		filter["type"] = params.Type
	}
	if params.Genre != "" {
		filter["genre"] = bson.M{"$regex": "^" + regexpQuote(params.Genre) + "$", "$options": "i"}
	}
	if params.Year != 0 {
		filter["year"] = params.Year
	}
	if params.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"nameEnglish": containsFold(params.Search)},
			bson.M{"nameArabic": containsFold(params.Search)},
		}
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to count works", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count works: %w", err)
	}
	if total == 0 {
		return []*domain.Work{}, 0, nil
	}

	opts := newestFirst()
	if params.PageSize > 0 {
		opts.SetSkip(int64(params.offset())).SetLimit(int64(params.PageSize))
	}
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list works", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list works: %w", err)
	}
	works, err := decodeAll[domain.Work](ctx, cur)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode works: %w", err)
	}
	return works, int(total), nil
}

func (s *MongoWorkStore) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	return s.distinctIDs(ctx, bson.M{"createdBy": ownerID})
}

func (s *MongoWorkStore) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}
	return s.distinctIDs(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (s *MongoWorkStore) distinctIDs(ctx context.Context, filter bson.M) ([]string, error) {
	values, err := s.col.Distinct(ctx, "_id", filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list work ids", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list work ids: %w", err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
