// Package media - хранилище медиафайлов (постеры, аватары, реклама).
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// ResourceType - вид ресурса во внешнем хранилище.
type ResourceType string

const (
	ResourceImage ResourceType = "image"
	ResourceVideo ResourceType = "video"
	ResourceAuto  ResourceType = "auto"
)

// Подпапки внутри корневой папки медиа.
const (
	FolderPosters        = "posters"
	FolderProfiles       = "profiles"
	FolderAdvertisements = "advertisements"
)

var (
	ErrEmptyUpload      = errors.New("empty upload")
	ErrInvalidDataURI   = errors.New("invalid data URI")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrTooLarge         = errors.New("upload exceeds size limit")
)

// Upload - содержимое для загрузки: поток (файл из multipart) или data URI.
type Upload struct {
	Reader   io.Reader
	DataURI  string
	Filename string
}

// Present сообщает, передано ли содержимое.
func (u *Upload) Present() bool {
	return u != nil && (u.Reader != nil || strings.TrimSpace(u.DataURI) != "")
}

// Options - параметры размещения загружаемого объекта.
type Options struct {
	Folder       string
	ResourceType ResourceType
}

// Store - внешнее медиа-хранилище.
type Store interface {
	Upload(ctx context.Context, upload Upload, opts Options) (domain.MediaRef, error)
	// Delete удаляет объект. Вызывающие используют его в режиме best-effort.
	Delete(ctx context.Context, publicID string, resourceType ResourceType) error
}

// Payload - прочитанное и проверенное содержимое загрузки.
type Payload struct {
	Data []byte
	MIME *mimetype.MIME
}

// Extension возвращает расширение файла по определенному MIME, например ".png".
func (p Payload) Extension() string { return p.MIME.Extension() }

// Read читает загрузку целиком (не более maxBytes) и проверяет, что тип содержимого
// соответствует resourceType. Тип определяется по содержимому, а не по имени файла.
func Read(upload Upload, resourceType ResourceType, maxBytes int64) (Payload, error) {
	var data []byte
	switch {
	case upload.Reader != nil:
		r := upload.Reader
		if maxBytes > 0 {
			r = io.LimitReader(r, maxBytes+1)
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return Payload{}, fmt.Errorf("failed to read upload: %w", err)
		}
		data = b
	case strings.TrimSpace(upload.DataURI) != "":
		b, err := DecodeDataURI(upload.DataURI)
		if err != nil {
			return Payload{}, err
		}
		data = b
	}
	if len(data) == 0 {
		return Payload{}, ErrEmptyUpload
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return Payload{}, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !Accepts(resourceType, mt) {
		return Payload{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mt.String())
	}
	return Payload{Data: data, MIME: mt}, nil
}

// Accepts сообщает, подходит ли определенный по содержимому тип для вида ресурса.
func Accepts(rt ResourceType, mt *mimetype.MIME) bool {
	isImage := strings.HasPrefix(mt.String(), "image/")
	isVideo := strings.HasPrefix(mt.String(), "video/")
	switch rt {
	case ResourceImage:
		return isImage
	case ResourceVideo:
		return isVideo
	default:
		return isImage || isVideo
	}
}

// DecodeDataURI декодирует "data:<mime>;base64,<payload>". Допускаются и
// не-base64 data URI с percent-кодированием.
func DecodeDataURI(uri string) ([]byte, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "data:") {
		return nil, ErrInvalidDataURI
	}
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, ErrInvalidDataURI
	}
	meta, payload := uri[len("data:"):comma], uri[comma+1:]
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return []byte(data), nil
}

// ResourceTypeFor сопоставляет тип медиа объявления с видом ресурса.
func ResourceTypeFor(mt domain.MediaType) ResourceType {
	if mt == domain.MediaVideo {
		return ResourceVideo
	}
	return ResourceImage
}

func newReader(p Payload) io.Reader { return bytes.NewReader(p.Data) }
