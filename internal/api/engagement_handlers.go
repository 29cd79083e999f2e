package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// --- Оценки ---

func (h *HTTPHandler) RateWork(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	var req domain.RateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	rating, err := h.svc.Ratings.Rate(r.Context(), id.UserID, req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, rating)
}

func (h *HTTPHandler) AverageRating(w http.ResponseWriter, r *http.Request) {
	agg, err := h.svc.Ratings.AverageFor(r.Context(), mux.Vars(r)["workId"])
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, agg)
}

func (h *HTTPHandler) AllRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.svc.Ratings.AllRatings(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, ratings)
}

func (h *HTTPHandler) PublisherRatings(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	ratings, err := h.svc.Ratings.RatingsForPublisher(r.Context(), id.UserID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, ratings)
}

// --- Комментарии ---

func (h *HTTPHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	var req domain.CommentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	comment, err := h.svc.Comments.AddComment(r.Context(), id.UserID, req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, comment)
}

func (h *HTTPHandler) WorkComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.Comments.ForWork(r.Context(), mux.Vars(r)["workId"])
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, comments)
}

func (h *HTTPHandler) AllComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.Comments.All(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, comments)
}

func (h *HTTPHandler) PublisherComments(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	comments, err := h.svc.Comments.ForPublisher(r.Context(), id.UserID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, comments)
}

func (h *HTTPHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Comments.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Отзывы о сайте ---

func (h *HTTPHandler) SubmitSiteReview(w http.ResponseWriter, r *http.Request) {
	id, _ := h.identity(r)
	var req domain.SiteReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, r, err)
		return
	}
	review, err := h.svc.SiteReviews.Submit(r.Context(), id.UserID, req)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, review)
}

func (h *HTTPHandler) ListSiteReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.svc.SiteReviews.List(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, reviews)
}
