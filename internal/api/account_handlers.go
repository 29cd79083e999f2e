package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
)

// Signup принимает JSON или multipart с необязательным полем profileImage.
func (h *HTTPHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP Signup request received")

	var req domain.SignupRequest
	var avatar *media.Upload
	if isMultipart(r) {
		if err := h.parseMultipart(w, r); err != nil {
			h.respondErr(w, r, err)
			return
		}
		req = domain.SignupRequest{
			Username: formString(r, "username"),
			Email:    formString(r, "email"),
			Password: formString(r, "password"),
		}
		upload, cleanup, err := h.formFile(r, "profileImage", media.ResourceImage)
		defer cleanup()
		if err != nil {
			h.respondErr(w, r, err)
			return
		}
		avatar = upload
	} else if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	user, err := h.svc.Accounts.Signup(ctx, req, avatar)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, user)
}

func (h *HTTPHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req domain.SigninRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	res, err := h.svc.Accounts.Signin(r.Context(), req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, res)
}

func (h *HTTPHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	res, err := h.svc.Accounts.RequestPasswordReset(r.Context(), req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, res)
}

func (h *HTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	res, err := h.svc.Accounts.CompletePasswordReset(r.Context(), mux.Vars(r)["token"], req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, res)
}

func (h *HTTPHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	user, err := h.svc.Accounts.Profile(r.Context(), id.UserID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			h.logger.WarnContext(r.Context(), "User from valid token not found", slog.String("userID", id.UserID))
		}
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

// UpdateProfile принимает JSON или multipart с новым profileImage.
func (h *HTTPHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	var req domain.UpdateProfileRequest
	var avatar *media.Upload
	if isMultipart(r) {
		if err := h.parseMultipart(w, r); err != nil {
			h.respondErr(w, r, err)
			return
		}
		req.Username = formOptionalString(r, "username")
		req.Email = formOptionalString(r, "email")
		upload, cleanup, err := h.formFile(r, "profileImage", media.ResourceImage)
		defer cleanup()
		if err != nil {
			h.respondErr(w, r, err)
			return
		}
		avatar = upload
	} else if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}

	user, err := h.svc.Accounts.UpdateProfile(r.Context(), id.UserID, req, avatar)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

func (h *HTTPHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	var req domain.FavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	res, err := h.svc.Accounts.AddFavorite(r.Context(), id.UserID, req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, res)
}

func (h *HTTPHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	res, err := h.svc.Accounts.Favorites(r.Context(), id.UserID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, res)
}

func (h *HTTPHandler) CheckFavorite(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	res, err := h.svc.Accounts.IsFavorite(r.Context(), id.UserID, mux.Vars(r)["workId"])
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, res)
}

func (h *HTTPHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	if err := h.svc.Accounts.RemoveFavorite(r.Context(), id.UserID, mux.Vars(r)["workId"]); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Администрирование пользователей ---

func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	user, err := h.svc.Accounts.CreateUserByAdmin(r.Context(), req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, user)
}

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Accounts.ListUsers(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, users)
}

func (h *HTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	user, err := h.svc.Accounts.UpdateUserByAdmin(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

func (h *HTTPHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Accounts.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
