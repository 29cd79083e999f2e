package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
)

// --- Реклама ---

// CreateAdvertisement принимает multipart с файлом "media" или JSON с mediaData.
func (h *HTTPHandler) CreateAdvertisement(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	var req domain.CreateAdvertisementRequest
	var file *media.Upload
	if isMultipart(r) {
		if err := h.parseMultipart(w, r); err != nil {
			h.respondErr(w, r, err)
			return
		}
		req = domain.CreateAdvertisementRequest{
			Name:      formString(r, "name"),
			MediaType: formString(r, "mediaType"),
			MediaData: formString(r, "mediaData"),
		}
		rt := media.ResourceAuto
		if mt := domain.MediaType(req.MediaType); mt == domain.MediaImage || mt == domain.MediaVideo {
			rt = media.ResourceTypeFor(mt)
		}
		upload, cleanup, err := h.formFile(r, "media", rt)
		defer cleanup()
		if err != nil {
			h.respondErr(w, r, err)
			return
		}
		file = upload
	} else if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	ad, err := h.svc.Advertisements.Create(r.Context(), id, req, file)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, ad)
}

func (h *HTTPHandler) ListAdvertisements(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Advertisements.List(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, res)
}

func (h *HTTPHandler) ListActiveAdvertisements(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Advertisements.ListActive(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, res)
}

func (h *HTTPHandler) GetAdvertisement(w http.ResponseWriter, r *http.Request) {
	ad, err := h.svc.Advertisements.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, ad)
}

func (h *HTTPHandler) RenameAdvertisement(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateAdvertisementRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	ad, err := h.svc.Advertisements.Rename(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, ad)
}

func (h *HTTPHandler) ToggleAdvertisement(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Advertisements.Toggle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, res)
}

func (h *HTTPHandler) DeleteAdvertisement(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Advertisements.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Обратная связь ---

func (h *HTTPHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	res, err := h.svc.Contacts.Submit(r.Context(), req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, res)
}

func (h *HTTPHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Contacts.List(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, res)
}

func (h *HTTPHandler) ListUnreadContacts(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Contacts.ListUnread(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, res)
}

func (h *HTTPHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.Contacts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, msg)
}

func (h *HTTPHandler) MarkContactRead(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Contacts.MarkRead(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, res)
}

func (h *HTTPHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Contacts.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
