package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// LocalStore сохраняет медиа на диск; используется при разработке (MEDIA_DRIVER=local).
// PublicID - относительный путь файла, URL строится от baseURL.
type LocalStore struct {
	dir      string
	baseURL  string
	root     string
	maxBytes int64
	logger   *slog.Logger
}

func NewLocalStore(dir, baseURL, root string, maxBytes int64, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), root: root, maxBytes: maxBytes, logger: logger}, nil
}

// Dir - каталог с файлами, отдается HTTP-сервером.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Upload(ctx context.Context, upload Upload, opts Options) (domain.MediaRef, error) {
	payload, err := Read(upload, opts.ResourceType, s.maxBytes)
	if err != nil {
		return domain.MediaRef{}, err
	}
	publicID := path.Join(s.root, opts.Folder, uuid.NewString()+payload.Extension())
	target := filepath.Join(s.dir, filepath.FromSlash(publicID))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return domain.MediaRef{}, fmt.Errorf("failed to create media folder: %w", err)
	}
	if err := os.WriteFile(target, payload.Data, 0o644); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write media file", slog.String("path", target), slog.String("error", err.Error()))
		return domain.MediaRef{}, fmt.Errorf("failed to write media: %w", err)
	}
	s.logger.DebugContext(ctx, "Media stored locally", slog.String("publicID", publicID), slog.String("mime", payload.MIME.String()))
	return domain.MediaRef{PublicID: publicID, URL: s.baseURL + "/" + publicID}, nil
}

func (s *LocalStore) Delete(ctx context.Context, publicID string, _ ResourceType) error {
	if publicID == "" {
		return nil
	}
	clean := path.Clean("/" + publicID)
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return nil
}
