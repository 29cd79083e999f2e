package domain

import (
	"time"
)

// MediaType - тип медиа рекламного объявления
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Advertisement - рекламное объявление, управляется администратором.
type Advertisement struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	Name      string    `json:"name" db:"name" bson:"name"`
	MediaType MediaType `json:"mediaType" db:"media_type" bson:"mediaType"`
	Media     MediaRef  `json:"media" db:"media" bson:"media"`
	IsActive  bool      `json:"isActive" db:"is_active" bson:"isActive"`
	CreatedBy string    `json:"createdBy,omitempty" db:"created_by" bson:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// Public возвращает копию без ссылки на создателя.
func (a Advertisement) Public() Advertisement {
	a.CreatedBy = ""
	return a
}

// CreateAdvertisementRequest: медиа передается файлом или как MediaData (data URI).
type CreateAdvertisementRequest struct {
	Name      string `json:"name" validate:"max=200"`
	MediaType string `json:"mediaType" validate:"required,oneof=image video"`
	MediaData string `json:"mediaData,omitempty"`
}

type UpdateAdvertisementRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// AdvertisementList - ответ со списком объявлений.
type AdvertisementList struct {
	Count          int             `json:"count"`
	Advertisements []Advertisement `json:"advertisements"`
}

// AdvertisementToggle - ответ на переключение статуса объявления.
type AdvertisementToggle struct {
	Message       string         `json:"message"`
	Advertisement *Advertisement `json:"advertisement"`
}
