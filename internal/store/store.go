package store

import (
	"context"
	"errors"
	"time"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// Кастомные ошибки хранилища
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user with this email already exists")
	ErrResetTokenNotFound    = errors.New("reset token not found or expired")
	ErrAlreadyFavorite       = errors.New("work already in favorites")
	ErrNotFavorite           = errors.New("work not in favorites")
	ErrWorkNotFound          = errors.New("work not found")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrAdvertisementNotFound = errors.New("advertisement not found")
	ErrContactNotFound       = errors.New("contact message not found")
)

// UserStore - хранилище учетных записей, состояния сброса пароля и избранного.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByEmailOrUsername возвращает любого пользователя с таким email или именем.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Update перезаписывает изменяемые поля: имя, email, хеш пароля, роль, аватар.
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, userID string) error

	// SetResetToken сохраняет хеш токена сброса, заменяя предыдущий.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// ConsumeResetToken одной операцией находит пользователя по хешу с неистекшим сроком,
	// устанавливает новый хеш пароля и очищает состояние сброса.
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, newPasswordHash string) (*domain.User, error)

	AddFavorite(ctx context.Context, userID, workID string) error
	RemoveFavorite(ctx context.Context, userID, workID string) error
	ListFavorites(ctx context.Context, userID string) ([]string, error)
	IsFavorite(ctx context.Context, userID, workID string) (bool, error)
}

// WorkListParams параметры выборки работ. PageSize <= 0 - без пагинации.
type WorkListParams struct {
	CreatedBy string
	Type      domain.WorkType
	Genre     string
	Year      int
	Search    string
	Page      int
	PageSize  int
}

func (p WorkListParams) offset() int {
	if p.PageSize <= 0 || p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// WorkStore - каталог работ.
type WorkStore interface {
	Create(ctx context.Context, work *domain.Work) error
	GetByID(ctx context.Context, id string) (*domain.Work, error)
	// GetOwner возвращает ID владельца (может быть пустым) или ErrWorkNotFound.
	GetOwner(ctx context.Context, id string) (string, error)
	Update(ctx context.Context, work *domain.Work) error
	Delete(ctx context.Context, id string) error
	// List упорядочивает по дате создания, новые первыми.
	List(ctx context.Context, params WorkListParams) ([]*domain.Work, int, error)
	IDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	// ExistingIDs возвращает подмножество ids, для которых работа существует.
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}

// RatingStore - оценки работ, одна на пару (user, work).
type RatingStore interface {
	Upsert(ctx context.Context, userID, workID string, value int) (*domain.Rating, error)
	// Aggregate возвращает неокругленное среднее и количество оценок.
	Aggregate(ctx context.Context, workID string) (*domain.AggregatedRating, error)
	ListByWorkIDs(ctx context.Context, workIDs []string) ([]*domain.Rating, error)
	ListAll(ctx context.Context) ([]*domain.Rating, error)
}

// SiteReviewStore - отзывы о сайте, один на пользователя.
type SiteReviewStore interface {
	Upsert(ctx context.Context, review *domain.SiteReview) (*domain.SiteReview, error)
	List(ctx context.Context) ([]*domain.SiteReview, error)
}

// CommentStore - комментарии к работам. Все выборки: новые первыми.
type CommentStore interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByWork(ctx context.Context, workID string) ([]*domain.Comment, error)
	ListByWorkIDs(ctx context.Context, workIDs []string) ([]*domain.Comment, error)
	ListAll(ctx context.Context) ([]*domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

// AdvertisementStore - рекламные объявления.
type AdvertisementStore interface {
	Create(ctx context.Context, ad *domain.Advertisement) error
	GetByID(ctx context.Context, id string) (*domain.Advertisement, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.Advertisement, error)
	Rename(ctx context.Context, id, name string) (*domain.Advertisement, error)
	// ToggleActive атомарно инвертирует флаг isActive.
	ToggleActive(ctx context.Context, id string) (*domain.Advertisement, error)
	Delete(ctx context.Context, id string) error
}

// ContactStore - сообщения обратной связи.
type ContactStore interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
	GetByID(ctx context.Context, id string) (*domain.ContactMessage, error)
	List(ctx context.Context, unreadOnly bool) ([]*domain.ContactMessage, error)
	MarkRead(ctx context.Context, id string) (*domain.ContactMessage, error)
	Delete(ctx context.Context, id string) error
}

// Stores объединяет все хранилища одного бэкенда.
type Stores struct {
	Users          UserStore
	Works          WorkStore
	Ratings        RatingStore
	SiteReviews    SiteReviewStore
	Comments       CommentStore
	Advertisements AdvertisementStore
	Contacts       ContactStore
}

// NewMockStores создает набор in-memory хранилищ для разработки и тестов.
func NewMockStores() *Stores {
	return &Stores{
		Users:          NewMockUserStore(),
		Works:          NewMockWorkStore(),
		Ratings:        NewMockRatingStore(),
		SiteReviews:    NewMockSiteReviewStore(),
		Comments:       NewMockCommentStore(),
		Advertisements: NewMockAdvertisementStore(),
		Contacts:       NewMockContactStore(),
	}
}
