package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
)

// Размер заголовка файла, по которому определяется тип содержимого.
const sniffLen = 3072

// Предел памяти для multipart; остальное уходит во временные файлы.
const multipartMemory = 32 << 20

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

// parseMultipart разбирает multipart-форму с ограничением размера запроса.
func (h *HTTPHandler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Validation("Upload exceeds size limit")
		}
		return domain.Validation("Invalid multipart form")
	}
	return nil
}

// formFile возвращает загрузку из поля формы или nil, если файла нет.
// Тип содержимого проверяется сразу по первым байтам файла.
func (h *HTTPHandler) formFile(r *http.Request, field string, rt media.ResourceType) (*media.Upload, func(), error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, domain.Validation("Invalid file field", domain.FieldError{Field: field, Rule: "file"})
	}
	cleanup := func() { _ = file.Close() }

	head, err := readHead(file)
	if err != nil {
		cleanup()
		return nil, func() {}, domain.Validation("Failed to read uploaded file", domain.FieldError{Field: field, Rule: "file"})
	}
	if len(head) == 0 {
		cleanup()
		return nil, func() {}, domain.Validation("Uploaded file is empty", domain.FieldError{Field: field, Rule: "required"})
	}
	mt := mimetype.Detect(head)
	if !media.Accepts(rt, mt) {
		cleanup()
		h.logger.WarnContext(r.Context(), "Rejected upload by content type", slog.String("field", field), slog.String("mime", mt.String()))
		return nil, func() {}, domain.Validation("Unsupported media type", domain.FieldError{Field: field, Rule: "mime", Param: mt.String()})
	}

	return &media.Upload{
		Reader:   io.MultiReader(bytes.NewReader(head), file),
		Filename: header.Filename,
	}, cleanup, nil
}

func readHead(file multipart.File) ([]byte, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// formValue возвращает значение поля и признак его наличия в форме.
func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func formString(r *http.Request, key string) string {
	v, _ := formValue(r, key)
	return v
}

func formOptionalString(r *http.Request, key string) *string {
	if v, ok := formValue(r, key); ok {
		return &v
	}
	return nil
}

// formInt разбирает необязательное целое поле формы.
func formInt(r *http.Request, key string) (*int, error) {
	v, ok := formValue(r, key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil, domain.Validation("Invalid number", domain.FieldError{Field: key, Rule: "number"})
	}
	return &n, nil
}

// workRequestFromForm собирает запрос на создание работы из multipart-формы.
// Поле cast принимает JSON-массив или одно имя.
func workRequestFromForm(r *http.Request) (domain.CreateWorkRequest, error) {
	req := domain.CreateWorkRequest{
		Type:              domain.WorkType(strings.TrimSpace(formString(r, "type"))),
		NameArabic:        formString(r, "nameArabic"),
		NameEnglish:       formString(r, "nameEnglish"),
		Director:          formString(r, "director"),
		AssistantDirector: formString(r, "assistantDirector"),
		Genre:             formString(r, "genre"),
		Country:           formString(r, "country"),
		FilmingLocation:   formString(r, "filmingLocation"),
		Summary:           formString(r, "summary"),
		PosterURL:         formString(r, "posterUrl"),
		PosterData:        formString(r, "posterData"),
	}
	year, err := formInt(r, "year")
	if err != nil {
		return req, err
	}
	if year != nil {
		req.Year = *year
	}
	if req.SeasonsCount, err = formInt(r, "seasonsCount"); err != nil {
		return req, err
	}
	if req.EpisodesCount, err = formInt(r, "episodesCount"); err != nil {
		return req, err
	}
	cast, err := domain.ParseCastList(formString(r, "cast"))
	if err != nil {
		return req, domain.Validation("Invalid cast list", domain.FieldError{Field: "cast", Rule: "json"})
	}
	req.Cast = cast
	return req, nil
}
