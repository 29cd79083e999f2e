package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// RouterOptions - необязательные части маршрутизатора.
type RouterOptions struct {
	// UploadsDir - каталог локального медиа-хранилища, отдается по /uploads/.
	UploadsDir string
}

var (
	adminOnly     = []domain.Role{domain.RoleAdmin}
	publisherOnly = []domain.Role{domain.RolePublisher}
	contributors  = []domain.Role{domain.RolePublisher, domain.RoleAdmin}
	members       = []domain.Role{domain.RoleUser, domain.RolePublisher, domain.RoleAdmin}
)

// NewRouter создает HTTP-маршрутизатор со всеми эндпоинтами API.
// Конкретные пути регистрируются раньше шаблонных ({id}).
func NewRouter(h *HTTPHandler, opts RouterOptions) *mux.Router {
	router := mux.NewRouter()
	router.Use(h.RequestLogger, h.Recover)
	router.NotFoundHandler = http.HandlerFunc(h.notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(h.methodNotAllowed)

	router.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet)
	if opts.UploadsDir != "" {
		router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadsDir))))
	}

	api := router.PathPrefix("/api").Subrouter()

	// Пользователи
	users := api.PathPrefix("/users").Subrouter()
	users.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	users.HandleFunc("/signin", h.Signin).Methods(http.MethodPost)
	users.HandleFunc("/forgot-password", h.ForgotPassword).Methods(http.MethodPost)
	users.HandleFunc("/reset-password/{token}", h.ResetPassword).Methods(http.MethodPost)
	users.Handle("/me", h.protect(h.GetProfile)).Methods(http.MethodGet)
	users.Handle("/profile", h.protect(h.UpdateProfile)).Methods(http.MethodPatch)
	users.Handle("/favorites", h.protect(h.AddFavorite)).Methods(http.MethodPost)
	users.Handle("/favorites", h.protect(h.ListFavorites)).Methods(http.MethodGet)
	users.Handle("/favorites/check/{workId}", h.protect(h.CheckFavorite)).Methods(http.MethodGet)
	users.Handle("/favorites/{workId}", h.protect(h.RemoveFavorite)).Methods(http.MethodDelete)
	users.Handle("", h.protect(h.CreateUser, adminOnly...)).Methods(http.MethodPost)
	users.Handle("", h.protect(h.ListUsers, adminOnly...)).Methods(http.MethodGet)
	users.Handle("/{id}", h.protect(h.UpdateUser, adminOnly...)).Methods(http.MethodPatch)
	users.Handle("/{id}", h.protect(h.DeleteUser, adminOnly...)).Methods(http.MethodDelete)

	// Каталог
	works := api.PathPrefix("/works").Subrouter()
	works.Handle("", h.protect(h.CreateWork, contributors...)).Methods(http.MethodPost)
	works.Handle("/with-image", h.protect(h.CreateWorkWithImage, contributors...)).Methods(http.MethodPost)
	works.Handle("", h.protect(h.ListWorks, contributors...)).Methods(http.MethodGet)
	works.HandleFunc("/public", h.ListPublicWorks).Methods(http.MethodGet)
	works.HandleFunc("/{id}", h.GetWork).Methods(http.MethodGet)
	works.Handle("/{id}", h.RequireAuth(h.RequireWorkOwnerOrAdmin(http.HandlerFunc(h.UpdateWork)))).Methods(http.MethodPatch)
	works.Handle("/{id}", h.RequireAuth(h.RequireWorkOwnerOrAdmin(http.HandlerFunc(h.DeleteWork)))).Methods(http.MethodDelete)
	api.Handle("/upload", h.protect(h.UploadPoster, contributors...)).Methods(http.MethodPost)

	// Оценки
	ratings := api.PathPrefix("/ratings").Subrouter()
	ratings.Handle("", h.protect(h.RateWork, members...)).Methods(http.MethodPost)
	ratings.HandleFunc("/average/{workId}", h.AverageRating).Methods(http.MethodGet)
	ratings.Handle("/admin", h.protect(h.AllRatings, adminOnly...)).Methods(http.MethodGet)
	ratings.Handle("/publisher", h.protect(h.PublisherRatings, publisherOnly...)).Methods(http.MethodGet)

	// Комментарии
	comments := api.PathPrefix("/comments").Subrouter()
	comments.Handle("", h.protect(h.AddComment, members...)).Methods(http.MethodPost)
	comments.HandleFunc("/work/{workId}", h.WorkComments).Methods(http.MethodGet)
	comments.Handle("/admin", h.protect(h.AllComments, adminOnly...)).Methods(http.MethodGet)
	comments.Handle("/publisher", h.protect(h.PublisherComments, publisherOnly...)).Methods(http.MethodGet)
	comments.Handle("/{id}", h.protect(h.DeleteComment, adminOnly...)).Methods(http.MethodDelete)

	// Отзывы о сайте
	api.Handle("/site-reviews", h.protect(h.SubmitSiteReview, members...)).Methods(http.MethodPost)
	api.HandleFunc("/site-reviews", h.ListSiteReviews).Methods(http.MethodGet)

	// Реклама
	ads := api.PathPrefix("/advertisements").Subrouter()
	ads.HandleFunc("/active", h.ListActiveAdvertisements).Methods(http.MethodGet)
	ads.Handle("", h.protect(h.CreateAdvertisement, adminOnly...)).Methods(http.MethodPost)
	ads.Handle("", h.protect(h.ListAdvertisements, adminOnly...)).Methods(http.MethodGet)
	ads.Handle("/{id}/toggle", h.protect(h.ToggleAdvertisement, adminOnly...)).Methods(http.MethodPatch)
	ads.Handle("/{id}", h.protect(h.GetAdvertisement, adminOnly...)).Methods(http.MethodGet)
	ads.Handle("/{id}", h.protect(h.RenameAdvertisement, adminOnly...)).Methods(http.MethodPatch)
	ads.Handle("/{id}", h.protect(h.DeleteAdvertisement, adminOnly...)).Methods(http.MethodDelete)

	// Обратная связь
	contact := api.PathPrefix("/contact").Subrouter()
	contact.HandleFunc("", h.SubmitContact).Methods(http.MethodPost)
	contact.Handle("", h.protect(h.ListContacts, adminOnly...)).Methods(http.MethodGet)
	contact.Handle("/unread", h.protect(h.ListUnreadContacts, adminOnly...)).Methods(http.MethodGet)
	contact.Handle("/{id}", h.protect(h.GetContact, adminOnly...)).Methods(http.MethodGet)
	contact.Handle("/{id}/read", h.protect(h.MarkContactRead, adminOnly...)).Methods(http.MethodPatch)
	contact.Handle("/{id}", h.protect(h.DeleteContact, adminOnly...)).Methods(http.MethodDelete)

	return router
}
