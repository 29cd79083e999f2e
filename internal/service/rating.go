package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
)

// RatingService - агрегатор оценок: не более одной оценки на пару (пользователь, работа).
type RatingService struct {
	ratings  store.RatingStore
	works    store.WorkStore
	lookup   WorkLookup
	validate *validator.Validate
	logger   *slog.Logger
}

func NewRatingService(ratings store.RatingStore, works store.WorkStore, lookup WorkLookup, v *validator.Validate, logger *slog.Logger) *RatingService {
	return &RatingService{ratings: ratings, works: works, lookup: lookup, validate: v, logger: logger}
}

// Rate создает или заменяет оценку пользователя.
func (s *RatingService) Rate(ctx context.Context, userID string, req domain.RateRequest) (*domain.Rating, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	workID := strings.TrimSpace(req.WorkID)
	exists, err := s.lookup.WorkExists(ctx, workID)
	if err != nil {
		return nil, domain.DependencyFailed("Failed to check work", err)
	}
	if !exists {
		return nil, domain.ErrWorkNotFound
	}
	rating, err := s.ratings.Upsert(ctx, userID, workID, req.Value)
	if err != nil {
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "Work rated", slog.String("userID", userID), slog.String("workID", workID), slog.Int("value", req.Value))
	return rating, nil
}

// AverageFor возвращает среднюю оценку, округленную до двух знаков; без оценок - {0, 0}.
func (s *RatingService) AverageFor(ctx context.Context, workID string) (*domain.AggregatedRating, error) {
	agg, err := s.ratings.Aggregate(ctx, workID)
	if err != nil {
		return nil, translate(err)
	}
	agg.WorkID = workID
	if agg.Count == 0 {
		agg.Average = 0
		return agg, nil
	}
	agg.Average = roundTo2(agg.Average)
	return agg, nil
}

func roundTo2(v float64) float64 { return math.Round(v*100) / 100 }

// RatingsForPublisher - все оценки работ, созданных издателем.
func (s *RatingService) RatingsForPublisher(ctx context.Context, publisherID string) ([]*domain.Rating, error) {
	ids, err := s.works.IDsByOwner(ctx, publisherID)
	if err != nil {
		return nil, translate(err)
	}
	ratings, err := s.ratings.ListByWorkIDs(ctx, ids)
	if err != nil {
		return nil, translate(err)
	}
	return ratings, nil
}

func (s *RatingService) AllRatings(ctx context.Context) ([]*domain.Rating, error) {
	ratings, err := s.ratings.ListAll(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return ratings, nil
}

// SiteReviewService - отзывы о сайте, один на пользователя.
type SiteReviewService struct {
	reviews  store.SiteReviewStore
	users    store.UserStore
	validate *validator.Validate
	logger   *slog.Logger
}

func NewSiteReviewService(reviews store.SiteReviewStore, users store.UserStore, v *validator.Validate, logger *slog.Logger) *SiteReviewService {
	return &SiteReviewService{reviews: reviews, users: users, validate: v, logger: logger}
}

// Submit создает или заменяет отзыв пользователя. Имя автора берется из профиля.
func (s *SiteReviewService) Submit(ctx context.Context, userID string, req domain.SiteReviewRequest) (*domain.SiteReview, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	username := userID
	if user, err := s.users.GetByID(ctx, userID); err == nil {
		username = user.Username
	} else {
		s.logger.WarnContext(ctx, "Reviewer profile not found, using id as name", slog.String("userID", userID))
	}

	review, err := s.reviews.Upsert(ctx, &domain.SiteReview{
		UserID:      userID,
		Username:    username,
		Value:       req.Value,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		return nil, translate(err)
	}
	return review, nil
}

func (s *SiteReviewService) List(ctx context.Context) ([]*domain.SiteReview, error) {
	reviews, err := s.reviews.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return reviews, nil
}
