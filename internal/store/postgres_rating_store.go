package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// PostgresRatingStore реализует RatingStore для PostgreSQL.
type PostgresRatingStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

const ratingColumns = `id, user_id, work_id, rating_value, created_at, updated_at`

// Upsert вставляет оценку или заменяет значение существующей по (user_id, work_id).
func (s *PostgresRatingStore) Upsert(ctx context.Context, userID, workID string, value int) (*domain.Rating, error) {
	query := `INSERT INTO ratings (id, user_id, work_id, rating_value, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $5)
              ON CONFLICT ON CONSTRAINT uq_user_work_rating
              DO UPDATE SET rating_value = EXCLUDED.rating_value, updated_at = EXCLUDED.updated_at
              RETURNING ` + ratingColumns

	var rating domain.Rating
	s.logger.DebugContext(ctx, "Executing Upsert rating query", slog.String("workID", workID), slog.String("userID", userID))
	if err := s.db.GetContext(ctx, &rating, query, uuid.NewString(), userID, workID, value, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to upsert rating in DB", slog.String("workID", workID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to upsert rating: %w", err)
	}
	return &rating, nil
}

// Aggregate считает среднее и количество оценок работы.
func (s *PostgresRatingStore) Aggregate(ctx context.Context, workID string) (*domain.AggregatedRating, error) {
	query := `SELECT COALESCE(AVG(rating_value), 0) AS average_rating, COUNT(rating_value) AS rating_count
              FROM ratings WHERE work_id = $1`

	agg := domain.AggregatedRating{WorkID: workID}
	s.logger.DebugContext(ctx, "Executing Aggregate rating query", slog.String("workID", workID))
	if err := s.db.GetContext(ctx, &agg, query, workID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to aggregate ratings", slog.String("workID", workID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	return &agg, nil
}

func (s *PostgresRatingStore) ListByWorkIDs(ctx context.Context, workIDs []string) ([]*domain.Rating, error) {
	ratings := []*domain.Rating{}
	if len(workIDs) == 0 {
		return ratings, nil
	}
	query := `SELECT ` + ratingColumns + ` FROM ratings WHERE work_id = ANY($1) ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &ratings, query, pq.Array(workIDs)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list ratings by works", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}

func (s *PostgresRatingStore) ListAll(ctx context.Context) ([]*domain.Rating, error) {
	ratings := []*domain.Rating{}
	if err := s.db.SelectContext(ctx, &ratings, `SELECT `+ratingColumns+` FROM ratings ORDER BY created_at DESC`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list ratings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	return ratings, nil
}

// PostgresSiteReviewStore реализует SiteReviewStore для PostgreSQL.
type PostgresSiteReviewStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

const siteReviewColumns = `id, user_id, username, rating_value, description, created_at, updated_at`

func (s *PostgresSiteReviewStore) Upsert(ctx context.Context, review *domain.SiteReview) (*domain.SiteReview, error) {
	query := `INSERT INTO site_reviews (id, user_id, username, rating_value, description, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $6)
              ON CONFLICT (user_id)
              DO UPDATE SET username = EXCLUDED.username, rating_value = EXCLUDED.rating_value,
                            description = EXCLUDED.description, updated_at = EXCLUDED.updated_at
              RETURNING ` + siteReviewColumns
	id := review.ID
	if id == "" {
		id = uuid.NewString()
	}
	var stored domain.SiteReview
	if err := s.db.GetContext(ctx, &stored, query, id, review.UserID, review.Username, review.Value, review.Description, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to upsert site review", slog.String("userID", review.UserID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to upsert site review: %w", err)
	}
	return &stored, nil
}

func (s *PostgresSiteReviewStore) List(ctx context.Context) ([]*domain.SiteReview, error) {
	reviews := []*domain.SiteReview{}
	if err := s.db.SelectContext(ctx, &reviews, `SELECT `+siteReviewColumns+` FROM site_reviews ORDER BY created_at DESC`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list site reviews", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list site reviews: %w", err)
	}
	return reviews, nil
}
