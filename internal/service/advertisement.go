package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
)

// AdvertisementService управляет рекламными объявлениями.
type AdvertisementService struct {
	ads      store.AdvertisementStore
	media    media.Store
	validate *validator.Validate
	logger   *slog.Logger
}

func NewAdvertisementService(ads store.AdvertisementStore, ms media.Store, v *validator.Validate, logger *slog.Logger) *AdvertisementService {
	return &AdvertisementService{ads: ads, media: ms, validate: v, logger: logger}
}

// Create загружает медиа (файл или MediaData) и сохраняет активное объявление.
func (s *AdvertisementService) Create(ctx context.Context, id domain.Identity, req domain.CreateAdvertisementRequest, file *media.Upload) (*domain.Advertisement, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}

	upload := file
	if !upload.Present() {
		if strings.TrimSpace(req.MediaData) == "" {
			return nil, domain.Validation("Media file is required", domain.FieldError{Field: "media", Rule: "required"})
		}
		upload = &media.Upload{DataURI: req.MediaData}
	}

	mediaType := domain.MediaType(req.MediaType)
	rt := media.ResourceTypeFor(mediaType)
	ref, err := s.media.Upload(ctx, *upload, media.Options{Folder: media.FolderAdvertisements, ResourceType: rt})
	if err != nil {
		s.logger.ErrorContext(ctx, "Advertisement media upload failed", slog.String("error", err.Error()))
		return nil, uploadError(err)
	}

	ad := &domain.Advertisement{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		MediaType: mediaType,
		Media:     ref,
		IsActive:  true,
		CreatedBy: id.UserID,
	}
	if err := s.ads.Create(ctx, ad); err != nil {
		deleteMediaQuietly(ctx, s.media, s.logger, &ref, rt)
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "Advertisement created", slog.String("advertisementID", ad.ID), slog.String("mediaType", string(mediaType)))
	return ad, nil
}

func (s *AdvertisementService) List(ctx context.Context) (*domain.AdvertisementList, error) {
	ads, err := s.ads.List(ctx, false)
	if err != nil {
		return nil, translate(err)
	}
	return adList(ads, false), nil
}

// ListActive - публичная выборка активных объявлений без ссылки на создателя.
func (s *AdvertisementService) ListActive(ctx context.Context) (*domain.AdvertisementList, error) {
	ads, err := s.ads.List(ctx, true)
	if err != nil {
		return nil, translate(err)
	}
	return adList(ads, true), nil
}

func adList(ads []*domain.Advertisement, public bool) *domain.AdvertisementList {
	out := make([]domain.Advertisement, 0, len(ads))
	for _, ad := range ads {
		if public {
			out = append(out, ad.Public())
			continue
		}
		out = append(out, *ad)
	}
	return &domain.AdvertisementList{Count: len(out), Advertisements: out}
}

func (s *AdvertisementService) Get(ctx context.Context, adID string) (*domain.Advertisement, error) {
	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		return nil, translate(err)
	}
	return ad, nil
}

func (s *AdvertisementService) Rename(ctx context.Context, adID string, req domain.UpdateAdvertisementRequest) (*domain.Advertisement, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	ad, err := s.ads.Rename(ctx, adID, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, translate(err)
	}
	return ad, nil
}

func (s *AdvertisementService) Toggle(ctx context.Context, adID string) (*domain.AdvertisementToggle, error) {
	ad, err := s.ads.ToggleActive(ctx, adID)
	if err != nil {
		return nil, translate(err)
	}
	state := "deactivated"
	if ad.IsActive {
		state = "activated"
	}
	s.logger.InfoContext(ctx, "Advertisement toggled", slog.String("advertisementID", adID), slog.Bool("isActive", ad.IsActive))
	return &domain.AdvertisementToggle{
		Message:       "Advertisement " + state + " successfully",
		Advertisement: ad,
	}, nil
}

// Delete удаляет медиа (best-effort), затем запись.
func (s *AdvertisementService) Delete(ctx context.Context, adID string) error {
	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		return translate(err)
	}
	deleteMediaQuietly(ctx, s.media, s.logger, &ad.Media, media.ResourceTypeFor(ad.MediaType))
	if err := s.ads.Delete(ctx, adID); err != nil {
		return translate(err)
	}
	s.logger.InfoContext(ctx, "Advertisement deleted", slog.String("advertisementID", adID))
	return nil
}
