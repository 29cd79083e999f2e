package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/devabdallah1411/arabFilmsServer/internal/access"
	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
)

// CatalogService управляет работами с проверкой ролей и владения.
type CatalogService struct {
	works    store.WorkStore
	guard    *access.Guard
	media    media.Store
	validate *validator.Validate
	logger   *slog.Logger
}

func NewCatalogService(works store.WorkStore, guard *access.Guard, ms media.Store, v *validator.Validate, logger *slog.Logger) *CatalogService {
	return &CatalogService{works: works, guard: guard, media: ms, validate: v, logger: logger}
}

// CreateWork создает работу; постер необязателен.
func (s *CatalogService) CreateWork(ctx context.Context, id *domain.Identity, req domain.CreateWorkRequest, poster *media.Upload) (*domain.Work, error) {
	return s.create(ctx, id, req, poster, false)
}

// CreateWorkWithImage требует постер: файл, data URI или URL.
func (s *CatalogService) CreateWorkWithImage(ctx context.Context, id *domain.Identity, req domain.CreateWorkRequest, poster *media.Upload) (*domain.Work, error) {
	return s.create(ctx, id, req, poster, true)
}

func (s *CatalogService) create(ctx context.Context, id *domain.Identity, req domain.CreateWorkRequest, poster *media.Upload, requirePoster bool) (*domain.Work, error) {
	if id != nil {
		if err := s.guard.AuthorizeRole(*id, domain.RolePublisher, domain.RoleAdmin); err != nil {
			return nil, err
		}
	}

	work := req.NewWork()
	work.ID = uuid.NewString()
	if id != nil {
		work.CreatedBy = id.UserID
	}

	// Источник постера: файл > data URI > URL.
	var upload *media.Upload
	switch {
	case poster.Present():
		upload = poster
	case strings.TrimSpace(req.PosterData) != "":
		upload = &media.Upload{DataURI: req.PosterData}
	case strings.TrimSpace(req.PosterURL) != "":
		work.PosterURL = strings.TrimSpace(req.PosterURL)
	case requirePoster:
		return nil, domain.Validation("Either image file or posterUrl must be provided",
			domain.FieldError{Field: "posterUrl", Rule: "required"})
	}

	if err := validate(ctx, s.validate, work); err != nil {
		return nil, err
	}

	if upload != nil {
		ref, err := s.media.Upload(ctx, *upload, media.Options{Folder: media.FolderPosters, ResourceType: media.ResourceImage})
		if err != nil {
			s.logger.ErrorContext(ctx, "Poster upload failed", slog.String("error", err.Error()))
			return nil, uploadError(err)
		}
		work.PosterURL = ref.URL
		work.PosterPublicID = ref.PublicID
	}

	if err := s.works.Create(ctx, work); err != nil {
		s.deletePoster(ctx, work.PosterPublicID)
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "Work created", slog.String("workID", work.ID), slog.String("createdBy", work.CreatedBy))
	return work, nil
}

func (s *CatalogService) GetWork(ctx context.Context, workID string) (*domain.Work, error) {
	work, err := s.works.GetByID(ctx, workID)
	if err != nil {
		return nil, translate(err)
	}
	return work, nil
}

// ListWorks - список для издателей и администраторов: издатель видит только свои работы.
func (s *CatalogService) ListWorks(ctx context.Context, id domain.Identity, params store.WorkListParams) (*domain.WorkPage, error) {
	if err := s.guard.AuthorizeRole(id, domain.RolePublisher, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !id.IsAdmin() {
		params.CreatedBy = id.UserID
	}
	return s.list(ctx, params)
}

// ListPublicWorks - публичный список всех работ независимо от владельца.
func (s *CatalogService) ListPublicWorks(ctx context.Context, params store.WorkListParams) (*domain.WorkPage, error) {
	params.CreatedBy = ""
	return s.list(ctx, params)
}

func (s *CatalogService) list(ctx context.Context, params store.WorkListParams) (*domain.WorkPage, error) {
	works, total, err := s.works.List(ctx, params)
	if err != nil {
		return nil, translate(err)
	}
	page := &domain.WorkPage{Total: total, Works: works}
	if params.PageSize > 0 {
		page.Page = max(params.Page, 1)
		page.PageSize = params.PageSize
	}
	return page, nil
}

// UpdateWork проверяет владение до любых изменений. Поле createdBy запроса отбрасывается.
func (s *CatalogService) UpdateWork(ctx context.Context, id domain.Identity, workID string, req domain.UpdateWorkRequest) (*domain.Work, error) {
	if err := s.guard.AuthorizeWorkOwnerOrAdmin(ctx, id, workID); err != nil {
		return nil, err
	}
	work, err := s.works.GetByID(ctx, workID)
	if err != nil {
		return nil, translate(err)
	}
	if req.CreatedBy != nil {
		s.logger.DebugContext(ctx, "Ignoring createdBy in work update", slog.String("workID", workID))
		req.CreatedBy = nil
	}

	oldPoster := work.PosterPublicID
	req.Apply(work)
	if err := validate(ctx, s.validate, work); err != nil {
		return nil, err
	}
	if err := s.works.Update(ctx, work); err != nil {
		return nil, translate(err)
	}
	if oldPoster != "" && oldPoster != work.PosterPublicID {
		s.deletePoster(ctx, oldPoster)
	}
	s.logger.InfoContext(ctx, "Work updated", slog.String("workID", workID), slog.String("userID", id.UserID))
	return work, nil
}

// DeleteWork удаляет работу без каскада на оценки, комментарии и избранное.
func (s *CatalogService) DeleteWork(ctx context.Context, id domain.Identity, workID string) error {
	if err := s.guard.AuthorizeWorkOwnerOrAdmin(ctx, id, workID); err != nil {
		return err
	}
	work, err := s.works.GetByID(ctx, workID)
	if err != nil {
		return translate(err)
	}
	if err := s.works.Delete(ctx, workID); err != nil {
		return translate(err)
	}
	s.deletePoster(ctx, work.PosterPublicID)
	s.logger.InfoContext(ctx, "Work deleted", slog.String("workID", workID), slog.String("userID", id.UserID))
	return nil
}

// UploadPoster загружает изображение постера отдельно от создания работы.
func (s *CatalogService) UploadPoster(ctx context.Context, upload *media.Upload) (*domain.UploadedMedia, error) {
	if !upload.Present() {
		return nil, domain.Validation("No file uploaded", domain.FieldError{Field: "image", Rule: "required"})
	}
	ref, err := s.media.Upload(ctx, *upload, media.Options{Folder: media.FolderPosters, ResourceType: media.ResourceImage})
	if err != nil {
		return nil, uploadError(err)
	}
	return &domain.UploadedMedia{Message: "Image uploaded successfully", Data: ref}, nil
}

func (s *CatalogService) deletePoster(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	deleteMediaQuietly(ctx, s.media, s.logger, &domain.MediaRef{PublicID: publicID}, media.ResourceImage)
}
