package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
)

// CreateWork - создание работы из JSON; постер (posterUrl/posterData) необязателен.
func (h *HTTPHandler) CreateWork(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	var req domain.CreateWorkRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	work, err := h.svc.Catalog.CreateWork(r.Context(), &id, req, nil)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, work)
}

// CreateWorkWithImage - создание работы из multipart с файлом "image" или posterUrl.
func (h *HTTPHandler) CreateWorkWithImage(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	if err := h.parseMultipart(w, r); err != nil {
		h.respondErr(w, r, err)
		return
	}
	req, err := workRequestFromForm(r)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	poster, cleanup, err := h.formFile(r, "image", media.ResourceImage)
	defer cleanup()
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	work, err := h.svc.Catalog.CreateWorkWithImage(r.Context(), &id, req, poster)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, work)
}

// listParams читает фильтры и пагинацию из строки запроса.
func listParams(q url.Values) (store.WorkListParams, error) {
	params := store.WorkListParams{
		Type:   domain.WorkType(strings.TrimSpace(q.Get("type"))),
		Genre:  strings.TrimSpace(q.Get("genre")),
		Search: strings.TrimSpace(q.Get("search")),
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"year", &params.Year},
		{"page", &params.Page},
		{"pageSize", &params.PageSize},
	}
	for _, it := range ints {
		raw := strings.TrimSpace(q.Get(it.key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return params, domain.Validation("Invalid query parameter", domain.FieldError{Field: it.key, Rule: "number"})
		}
		*it.dst = n
	}
	return params, nil
}

// ListWorks - список для издателя (только свои) или администратора (все).
func (h *HTTPHandler) ListWorks(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	params, err := listParams(r.URL.Query())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	page, err := h.svc.Catalog.ListWorks(r.Context(), id, params)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, page)
}

func (h *HTTPHandler) ListPublicWorks(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r.URL.Query())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	page, err := h.svc.Catalog.ListPublicWorks(r.Context(), params)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, page)
}

func (h *HTTPHandler) GetWork(w http.ResponseWriter, r *http.Request) {
	work, err := h.svc.Catalog.GetWork(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, work)
}

func (h *HTTPHandler) UpdateWork(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	var req domain.UpdateWorkRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	work, err := h.svc.Catalog.UpdateWork(r.Context(), id, mux.Vars(r)["id"], req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, work)
}

func (h *HTTPHandler) DeleteWork(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	if err := h.svc.Catalog.DeleteWork(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPoster загружает изображение из поля "image" и возвращает ссылку на него.
func (h *HTTPHandler) UploadPoster(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.respondErr(w, r, err)
		return
	}
	upload, cleanup, err := h.formFile(r, "image", media.ResourceImage)
	defer cleanup()
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	res, err := h.svc.Catalog.UploadPoster(r.Context(), upload)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, res)
}
