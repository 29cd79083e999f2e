// Package service содержит прикладную логику: учетные записи, каталог, оценки,
// комментарии, отзывы о сайте, рекламу и обратную связь.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
)

// WorkLookup проверяет существование работ. Реализуется хранилищем работ
// (StoreWorkLookup) или удаленным каталогом через gRPC (clients.LookupClient).
type WorkLookup interface {
	WorkExists(ctx context.Context, workID string) (bool, error)
	// ExistingWorkIDs возвращает подмножество ids, для которых работа существует.
	ExistingWorkIDs(ctx context.Context, ids []string) ([]string, error)
}

// StoreWorkLookup адаптирует store.WorkStore к WorkLookup.
type StoreWorkLookup struct {
	Works store.WorkStore
}

func (l StoreWorkLookup) WorkExists(ctx context.Context, workID string) (bool, error) {
	if _, err := l.Works.GetOwner(ctx, workID); err != nil {
		if errors.Is(err, store.ErrWorkNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l StoreWorkLookup) ExistingWorkIDs(ctx context.Context, ids []string) ([]string, error) {
	return l.Works.ExistingIDs(ctx, ids)
}

// storeErrors сопоставляет ошибки хранилища с ошибками предметной области.
var storeErrors = []struct {
	from error
	to   *domain.Error
}{
	{store.ErrUserNotFound, domain.ErrUserNotFound},
	{store.ErrUserAlreadyExists, domain.ErrEmailInUse},
	{store.ErrResetTokenNotFound, domain.ErrResetTokenInvalid},
	{store.ErrAlreadyFavorite, domain.ErrAlreadyFavorite},
	{store.ErrNotFavorite, domain.ErrNotFavorite},
	{store.ErrWorkNotFound, domain.ErrWorkNotFound},
	{store.ErrCommentNotFound, domain.ErrCommentNotFound},
	{store.ErrAdvertisementNotFound, domain.ErrAdvertisementAbsent},
	{store.ErrContactNotFound, domain.ErrContactNotFound},
}

// translate переводит ошибку хранилища в *domain.Error; неизвестные ошибки - INTERNAL.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	for _, m := range storeErrors {
		if errors.Is(err, m.from) {
			return m.to
		}
	}
	return domain.Internal(err)
}

// validate проверяет DTO и возвращает ошибку VALIDATION с деталями.
func validate(ctx context.Context, v *validator.Validate, s interface{}) error {
	if err := v.StructCtx(ctx, s); err != nil {
		return domain.FromValidation(err)
	}
	return nil
}

// uploadError: ошибки содержимого - это VALIDATION, остальные - UPLOAD_FAILED.
func uploadError(err error) error {
	switch {
	case errors.Is(err, media.ErrUnsupportedMedia):
		return domain.Validation("Unsupported media type")
	case errors.Is(err, media.ErrInvalidDataURI):
		return domain.Validation("Invalid media data")
	case errors.Is(err, media.ErrEmptyUpload):
		return domain.Validation("Media file is empty")
	case errors.Is(err, media.ErrTooLarge):
		return domain.Validation("Media file is too large")
	}
	return domain.UploadFailed(err)
}

// deleteMediaQuietly удаляет медиа в режиме best-effort: ошибка только логируется.
func deleteMediaQuietly(ctx context.Context, ms media.Store, logger *slog.Logger, ref *domain.MediaRef, rt media.ResourceType) {
	if ref == nil || ref.PublicID == "" {
		return
	}
	if err := ms.Delete(ctx, ref.PublicID, rt); err != nil {
		logger.WarnContext(ctx, "Failed to delete media, continuing", slog.String("publicID", ref.PublicID), slog.String("error", err.Error()))
	}
}

func systemNow() time.Time { return time.Now().UTC() }
