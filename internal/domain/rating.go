package domain

import (
	"time"
)

// Rating - оценка работы пользователем. Одна на пару (userId, workId).
type Rating struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	UserID    string    `json:"userId" db:"user_id" bson:"userId"`
	WorkID    string    `json:"workId" db:"work_id" bson:"workId"`
	Value     int       `json:"ratingValue" db:"rating_value" bson:"ratingValue"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// RateRequest определяет тело запроса на выставление оценки.
type RateRequest struct {
	WorkID string `json:"workId" validate:"required,notblank"`
	Value  int    `json:"ratingValue" validate:"gte=1,lte=5"`
}

// AggregatedRating содержит среднюю оценку работы
type AggregatedRating struct {
	WorkID  string  `json:"workId,omitempty" db:"-"`
	Average float64 `json:"average" db:"average_rating"`
	Count   int64   `json:"count" db:"rating_count"`
}

// SiteReview - отзыв пользователя о сайте, не более одного на пользователя.
type SiteReview struct {
	ID          string    `json:"id" db:"id" bson:"_id"`
	UserID      string    `json:"userId" db:"user_id" bson:"userId"`
	Username    string    `json:"username" db:"username" bson:"username"`
	Value       int       `json:"ratingValue" db:"rating_value" bson:"ratingValue"`
	Description string    `json:"description" db:"description" bson:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

type SiteReviewRequest struct {
	Value       int    `json:"ratingValue" validate:"gte=1,lte=5"`
	Description string `json:"description" validate:"required,notblank,max=3000"`
}
