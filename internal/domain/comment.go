package domain

import (
	"time"
)

// Comment - комментарий пользователя к работе.
type Comment struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	UserID    string    `json:"userId" db:"user_id" bson:"userId"`
	WorkID    string    `json:"workId" db:"work_id" bson:"workId"`
	Text      string    `json:"commentText" db:"comment_text" bson:"commentText"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	Username  string    `json:"username,omitempty" db:"-" bson:"-"` // Не хранится, подтягивается из пользователей
}

type CommentRequest struct {
	WorkID string `json:"workId" validate:"required,notblank"`
	Text   string `json:"commentText" validate:"required,notblank,max=2000"`
}
