package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// CloudinaryStore хранит медиа в Cloudinary.
type CloudinaryStore struct {
	cld      *cloudinary.Cloudinary
	root     string
	maxBytes int64
	logger   *slog.Logger
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, root string, maxBytes int64, logger *slog.Logger) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, root: root, maxBytes: maxBytes, logger: logger}, nil
}

func (s *CloudinaryStore) Upload(ctx context.Context, upload Upload, opts Options) (domain.MediaRef, error) {
	payload, err := Read(upload, opts.ResourceType, s.maxBytes)
	if err != nil {
		return domain.MediaRef{}, err
	}
	rt := opts.ResourceType
	if rt == "" {
		rt = ResourceAuto
	}
	params := uploader.UploadParams{
		Folder:       path.Join(s.root, opts.Folder),
		ResourceType: string(rt),
	}
	res, err := s.cld.Upload.Upload(ctx, newReader(payload), params)
	if err != nil {
		s.logger.ErrorContext(ctx, "Cloudinary upload failed", slog.String("folder", params.Folder), slog.String("error", err.Error()))
		return domain.MediaRef{}, fmt.Errorf("cloudinary upload: %w", err)
	}
	if res.Error.Message != "" {
		s.logger.ErrorContext(ctx, "Cloudinary rejected upload", slog.String("folder", params.Folder), slog.String("error", res.Error.Message))
		return domain.MediaRef{}, errors.New("cloudinary upload: " + res.Error.Message)
	}
	s.logger.InfoContext(ctx, "Media uploaded", slog.String("publicID", res.PublicID), slog.Int("bytes", len(payload.Data)))
	return domain.MediaRef{PublicID: res.PublicID, URL: res.SecureURL}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, publicID string, resourceType ResourceType) error {
	if publicID == "" {
		return nil
	}
	if resourceType == "" || resourceType == ResourceAuto {
		resourceType = ResourceImage
	}
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID, ResourceType: string(resourceType)})
	if err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	if res.Error.Message != "" {
		return errors.New("cloudinary destroy: " + res.Error.Message)
	}
	s.logger.InfoContext(ctx, "Media deleted", slog.String("publicID", publicID), slog.String("result", res.Result))
	return nil
}
