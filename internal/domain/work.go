package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lib/pq"
)

// WorkType определяет вид работы в каталоге
type WorkType string

const (
	WorkTypeFilm   WorkType = "film"
	WorkTypeSeries WorkType = "series"
)

// Work представляет фильм или сериал в каталоге.
// Правила валидации описаны тегами, правило для сериалов - в RegisterWorkRules.
type Work struct {
	ID                string         `json:"id" db:"id" bson:"_id"`
	Type              WorkType       `json:"type" db:"type" bson:"type" validate:"required,oneof=film series"`
	NameArabic        string         `json:"nameArabic" db:"name_arabic" bson:"nameArabic" validate:"required,notblank"`
	NameEnglish       string         `json:"nameEnglish" db:"name_english" bson:"nameEnglish" validate:"required,notblank"`
	Year              int            `json:"year" db:"year" bson:"year" validate:"gte=1800,lte=3000"`
	Director          string         `json:"director" db:"director" bson:"director" validate:"required,notblank"`
	AssistantDirector string         `json:"assistantDirector" db:"assistant_director" bson:"assistantDirector" validate:"required,notblank"`
	Genre             string         `json:"genre" db:"genre" bson:"genre" validate:"required,notblank"`
	Cast              pq.StringArray `json:"cast" db:"cast_members" bson:"cast" validate:"required,min=1,dive,notblank"`
	Country           string         `json:"country" db:"country" bson:"country" validate:"required,notblank"`
	FilmingLocation   string         `json:"filmingLocation" db:"filming_location" bson:"filmingLocation" validate:"required,notblank"`
	Summary           string         `json:"summary" db:"summary" bson:"summary" validate:"required,notblank"`
	PosterURL         string         `json:"posterUrl,omitempty" db:"poster_url" bson:"posterUrl,omitempty" validate:"omitempty,url"`
	PosterPublicID    string         `json:"posterPublicId,omitempty" db:"poster_public_id" bson:"posterPublicId,omitempty"`
	SeasonsCount      *int           `json:"seasonsCount,omitempty" db:"seasons_count" bson:"seasonsCount,omitempty" validate:"omitempty,gte=1"`
	EpisodesCount     *int           `json:"episodesCount,omitempty" db:"episodes_count" bson:"episodesCount,omitempty" validate:"omitempty,gte=1"`
	CreatedBy         string         `json:"createdBy,omitempty" db:"created_by" bson:"createdBy,omitempty"`
	CreatedAt         time.Time      `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// CastList принимает массив имен или строку с JSON-массивом (multipart-формы).
// Нестроковые и пустые элементы отбрасываются при декодировании.
type CastList []string

func (c *CastList) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		var encoded string
		if errStr := json.Unmarshal(data, &encoded); errStr != nil {
			return err
		}
		parsed, errParse := ParseCastList(encoded)
		if errParse != nil {
			return errParse
		}
		*c = parsed
		return nil
	}
	*c = sanitizeCast(raw)
	return nil
}

// ParseCastList разбирает значение поля cast из формы: JSON-массив или одно имя.
func ParseCastList(value string) (CastList, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return CastList{}, nil
	}
	if !strings.HasPrefix(value, "[") {
		return sanitizeCast([]any{value}), nil
	}
	var raw []any
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, err
	}
	return sanitizeCast(raw), nil
}

func sanitizeCast(raw []any) CastList {
	out := make(CastList, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CreateWorkRequest - тело запроса на создание работы.
// Постер: загруженный файл > PosterData (data URI) > PosterURL.
type CreateWorkRequest struct {
	Type              WorkType `json:"type"`
	NameArabic        string   `json:"nameArabic"`
	NameEnglish       string   `json:"nameEnglish"`
	Year              int      `json:"year"`
	Director          string   `json:"director"`
	AssistantDirector string   `json:"assistantDirector"`
	Genre             string   `json:"genre"`
	Cast              CastList `json:"cast"`
	Country           string   `json:"country"`
	FilmingLocation   string   `json:"filmingLocation"`
	Summary           string   `json:"summary"`
	PosterURL         string   `json:"posterUrl,omitempty"`
	PosterData        string   `json:"posterData,omitempty"`
	SeasonsCount      *int     `json:"seasonsCount,omitempty"`
	EpisodesCount     *int     `json:"episodesCount,omitempty"`
}

// UpdateWorkRequest - частичное обновление. CreatedBy принимается, но всегда отбрасывается.
type UpdateWorkRequest struct {
	Type              *WorkType `json:"type,omitempty"`
	NameArabic        *string   `json:"nameArabic,omitempty"`
	NameEnglish       *string   `json:"nameEnglish,omitempty"`
	Year              *int      `json:"year,omitempty"`
	Director          *string   `json:"director,omitempty"`
	AssistantDirector *string   `json:"assistantDirector,omitempty"`
	Genre             *string   `json:"genre,omitempty"`
	Cast              *CastList `json:"cast,omitempty"`
	Country           *string   `json:"country,omitempty"`
	FilmingLocation   *string   `json:"filmingLocation,omitempty"`
	Summary           *string   `json:"summary,omitempty"`
	PosterURL         *string   `json:"posterUrl,omitempty"`
	SeasonsCount      *int      `json:"seasonsCount,omitempty"`
	EpisodesCount     *int      `json:"episodesCount,omitempty"`
	CreatedBy         *string   `json:"createdBy,omitempty"`
}

// Apply переносит заданные поля запроса на работу. Владелец не меняется.
func (r *UpdateWorkRequest) Apply(w *Work) {
	if r.Type != nil {
		w.Type = *r.Type
	}
	if r.NameArabic != nil {
		w.NameArabic = strings.TrimSpace(*r.NameArabic)
	}
	if r.NameEnglish != nil {
		w.NameEnglish = strings.TrimSpace(*r.NameEnglish)
	}
	if r.Year != nil {
		w.Year = *r.Year
	}
	if r.Director != nil {
		w.Director = strings.TrimSpace(*r.Director)
	}
	if r.AssistantDirector != nil {
		w.AssistantDirector = strings.TrimSpace(*r.AssistantDirector)
	}
	if r.Genre != nil {
		w.Genre = strings.TrimSpace(*r.Genre)
	}
	if r.Cast != nil {
		w.Cast = pq.StringArray(*r.Cast)
	}
	if r.Country != nil {
		w.Country = strings.TrimSpace(*r.Country)
	}
	if r.FilmingLocation != nil {
		w.FilmingLocation = strings.TrimSpace(*r.FilmingLocation)
	}
	if r.Summary != nil {
		w.Summary = strings.TrimSpace(*r.Summary)
	}
	if r.PosterURL != nil {
		w.PosterURL = strings.TrimSpace(*r.PosterURL)
		w.PosterPublicID = ""
	}
	if r.SeasonsCount != nil {
		w.SeasonsCount = r.SeasonsCount
	}
	if r.EpisodesCount != nil {
		w.EpisodesCount = r.EpisodesCount
	}
}

// NewWork строит работу из запроса на создание (без ID, владельца и постера).
func (r *CreateWorkRequest) NewWork() *Work {
	cast := r.Cast
	if cast == nil {
		cast = CastList{}
	}
	return &Work{
		Type:              r.Type,
		NameArabic:        strings.TrimSpace(r.NameArabic),
		NameEnglish:       strings.TrimSpace(r.NameEnglish),
		Year:              r.Year,
		Director:          strings.TrimSpace(r.Director),
		AssistantDirector: strings.TrimSpace(r.AssistantDirector),
		Genre:             strings.TrimSpace(r.Genre),
		Cast:              pq.StringArray(cast),
		Country:           strings.TrimSpace(r.Country),
		FilmingLocation:   strings.TrimSpace(r.FilmingLocation),
		Summary:           strings.TrimSpace(r.Summary),
		SeasonsCount:      r.SeasonsCount,
		EpisodesCount:     r.EpisodesCount,
	}
}

// WorkPage - страница списка работ.
type WorkPage struct {
	Total    int     `json:"total"`
	Page     int     `json:"page,omitempty"`
	PageSize int     `json:"pageSize,omitempty"`
	Works    []*Work `json:"works"`
}
