// Package api - HTTP-слой: обработчики, middleware и маршрутизатор.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/devabdallah1411/arabFilmsServer/internal/access"
	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/service"
)

// Services - прикладные сервисы, которые обслуживает HTTP-слой.
type Services struct {
	Accounts       *service.AccountService
	Catalog        *service.CatalogService
	Ratings        *service.RatingService
	SiteReviews    *service.SiteReviewService
	Comments       *service.CommentService
	Advertisements *service.AdvertisementService
	Contacts       *service.ContactService
}

// HTTPHandler объединяет сервисы, слой доступа и логгер.
type HTTPHandler struct {
	svc            Services
	guard          *access.Guard
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewHTTPHandler(svc Services, guard *access.Guard, logger *slog.Logger, maxUploadBytes int64) *HTTPHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 << 20
	}
	return &HTTPHandler{svc: svc, guard: guard, logger: logger, maxUploadBytes: maxUploadBytes}
}

// errorBody - формат ответа об ошибке.
type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:            http.StatusBadRequest,
	domain.KindAuthRequired:          http.StatusUnauthorized,
	domain.KindTokenInvalid:          http.StatusUnauthorized,
	domain.KindTokenInvalidOrExpired: http.StatusBadRequest,
	domain.KindInvalidCredentials:    http.StatusUnauthorized,
	domain.KindForbidden:             http.StatusForbidden,
	domain.KindNotFound:              http.StatusNotFound,
	domain.KindConflict:              http.StatusConflict,
	domain.KindUploadFailed:          http.StatusBadGateway,
	domain.KindDependencyFailed:      http.StatusServiceUnavailable,
	domain.KindInternal:              http.StatusInternalServerError,
}

// StatusFor возвращает HTTP-статус для категории ошибки.
func StatusFor(kind domain.ErrorKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

// respondErr пишет ошибку в едином формате. Текст внутренних ошибок наружу не уходит.
func (h *HTTPHandler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal(err)
	}
	status := StatusFor(de.Kind)
	payload := errorPayload{Code: de.Code, Message: de.Message, Details: de.Details}

	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed", slog.String("path", r.URL.Path), slog.String("code", de.Code), slog.String("error", err.Error()))
	} else {
		h.logger.DebugContext(r.Context(), "Request rejected", slog.String("path", r.URL.Path), slog.String("code", de.Code))
	}
	if de.Kind == domain.KindInternal {
		payload.Message = "Internal server error"
	}
	h.respondJSON(w, r, status, errorBody{Error: payload})
}

// decodeJSON читает тело запроса; пустое тело допустимо и оставляет dst нетронутым.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.Validation("Invalid request payload")
	}
	return nil
}

// identity возвращает субъекта, установленного RequireAuth.
func (h *HTTPHandler) identity(r *http.Request) (domain.Identity, bool) {
	return access.IdentityFrom(r.Context())
}

// Healthz - проверка живости.
func (h *HTTPHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) notFound(w http.ResponseWriter, r *http.Request) {
	h.respondErr(w, r, domain.NewError(domain.KindNotFound, "Route not found"))
}

func (h *HTTPHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusMethodNotAllowed, errorBody{Error: errorPayload{Code: "METHOD_NOT_ALLOWED", Message: "Method not allowed"}})
}
