package api_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devabdallah1411/arabFilmsServer/internal/access"
	"github.com/devabdallah1411/arabFilmsServer/internal/api"
	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/logging"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
	"github.com/devabdallah1411/arabFilmsServer/internal/notify"
	"github.com/devabdallah1411/arabFilmsServer/internal/service"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
	"github.com/devabdallah1411/arabFilmsServer/pkg/auth"
)

const tinyPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type outbox struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (o *outbox) Send(ctx context.Context, msg notify.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	return nil
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	stores  *store.Stores
	tokens  auth.TokenManager
	mail    *outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logging.Discard()
	tokens, err := auth.NewTokenManager("api-test-secret", time.Hour)
	require.NoError(t, err)

	dir := t.TempDir()
	ms, err := media.NewLocalStore(dir, "http://localhost/uploads", "arabfilm", 5<<20, logger)
	require.NoError(t, err)

	stores := store.NewMockStores()
	mail := &outbox{}
	v := domain.NewValidator()
	lookup := service.StoreWorkLookup{Works: stores.Works}
	guard := access.NewGuard(tokens, stores.Works, logger)

	svc := api.Services{
		Accounts: service.NewAccountService(stores.Users, lookup, tokens, ms, mail, v, logger, service.AccountConfig{
			ResetTokenTTL: time.Hour,
			ResetURLBase:  "http://localhost/reset-password",
		}),
		Catalog:        service.NewCatalogService(stores.Works, guard, ms, v, logger),
		Ratings:        service.NewRatingService(stores.Ratings, stores.Works, lookup, v, logger),
		SiteReviews:    service.NewSiteReviewService(stores.SiteReviews, stores.Users, v, logger),
		Comments:       service.NewCommentService(stores.Comments, stores.Works, stores.Users, lookup, v, logger),
		Advertisements: service.NewAdvertisementService(stores.Advertisements, ms, v, logger),
		Contacts:       service.NewContactService(stores.Contacts, mail, "inbox@films.test", v, logger),
	}
	h := api.NewHTTPHandler(svc, guard, logger, 5<<20)
	return &testServer{
		t:       t,
		handler: api.NewRouter(h, api.RouterOptions{UploadsDir: dir}),
		stores:  stores,
		tokens:  tokens,
		mail:    mail,
	}
}

// tokenFor создает пользователя с ролью и возвращает его JWT.
func (s *testServer) tokenFor(username string, role domain.Role) (string, string) {
	s.t.Helper()
	id := "id-" + username
	err := s.stores.Users.Create(context.Background(), &domain.User{
		ID:           id,
		Username:     username,
		Email:        username + "@films.test",
		PasswordHash: "x",
		Role:         role,
	})
	require.NoError(s.t, err)
	token, err := s.tokens.Generate(id, role.String())
	require.NoError(s.t, err)
	return id, token
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doMultipart(path, token string, fields map[string]string, fileField string, file []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(s.t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "upload.bin")
		require.NoError(s.t, err)
		_, err = fw.Write(file)
		require.NoError(s.t, err)
	}
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errResp struct {
	Error struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Details []domain.FieldError `json:"details"`
	} `json:"error"`
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errResp](t, rec).Error.Code
}

func pngBytes(t *testing.T) []byte {
	b, err := base64.StdEncoding.DecodeString(tinyPNG)
	require.NoError(t, err)
	return b
}

func film(name string) map[string]interface{} {
	return map[string]interface{}{
		"type":              "film",
		"nameArabic":        "فيلم",
		"nameEnglish":       name,
		"year":              1995,
		"director":          "D",
		"assistantDirector": "AD",
		"genre":             "Drama",
		"cast":              []interface{}{"A", 7, " ", "B"},
		"country":           "Egypt",
		"filmingLocation":   "Cairo",
		"summary":           "S",
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[domain.ErrorKind]int{
		domain.KindValidation:            400,
		domain.KindAuthRequired:          401,
		domain.KindTokenInvalid:          401,
		domain.KindTokenInvalidOrExpired: 400,
		domain.KindInvalidCredentials:    401,
		domain.KindForbidden:             403,
		domain.KindNotFound:              404,
		domain.KindConflict:              409,
		domain.KindUploadFailed:          502,
		domain.KindDependencyFailed:      503,
		domain.KindInternal:              500,
		domain.ErrorKind("UNKNOWN"):      500,
	}
	for kind, want := range tests {
		assert.Equal(t, want, api.StatusFor(kind), kind)
	}
}

func TestHealthzAndNotFound(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestSignupSigninProfile(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"username": "layla", "email": "layla@films.test", "password": "secret123"}

	rec := s.do(http.MethodPost, "/api/users/signup", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPost, "/api/users/signup", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_IN_USE", errorCode(t, rec))

	rec = s.do(http.MethodPost, "/api/users/signin", "", map[string]string{"email": "layla@films.test", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, rec))

	rec = s.do(http.MethodPost, "/api/users/signin", "", map[string]string{"email": "layla@films.test", "password": "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	auth := decode[domain.AuthResponse](t, rec)
	require.NotEmpty(t, auth.Token)

	rec = s.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH_REQUIRED", errorCode(t, rec))

	rec = s.do(http.MethodGet, "/api/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_INVALID", errorCode(t, rec))

	rec = s.do(http.MethodGet, "/api/users/me", auth.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[domain.UserView](t, rec)
	assert.Equal(t, "layla", me.Username)
}

func TestSignup_ValidationDetails(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodPost, "/api/users/signup", "", map[string]string{"username": "x", "email": "nope", "password": "1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[errResp](t, rec)
	assert.Equal(t, "VALIDATION", resp.Error.Code)
	fields := map[string]bool{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestSignup_MultipartAvatar(t *testing.T) {
	s := newTestServer(t)
	fields := map[string]string{"username": "omar", "email": "omar@films.test", "password": "secret123"}

	rec := s.doMultipart("/api/users/signup", "", fields, "profileImage", []byte("plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.doMultipart("/api/users/signup", "", fields, "profileImage", pngBytes(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	u := decode[domain.UserView](t, rec)
	require.NotNil(t, u.ProfileImage)
	assert.Contains(t, u.ProfileImage.URL, "http://localhost/uploads/arabfilm/profiles/")
}

func TestPasswordResetEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/users/signup", "", map[string]string{"username": "layla", "email": "layla@films.test", "password": "secret123"})

	rec := s.do(http.MethodPost, "/api/users/forgot-password", "", map[string]string{"email": "layla@films.test"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodPost, "/api/users/forgot-password", "", map[string]string{"email": "ghost@films.test"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.mail.sent, 1)

	rec = s.do(http.MethodPost, "/api/users/reset-password/deadbeef", "", map[string]string{"newPassword": "brand-new"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "TOKEN_INVALID_OR_EXPIRED", errorCode(t, rec))
}

func TestWorkAccessControl(t *testing.T) {
	s := newTestServer(t)
	_, userTok := s.tokenFor("viewer", domain.RoleUser)
	ownerID, ownerTok := s.tokenFor("owner", domain.RolePublisher)
	_, otherTok := s.tokenFor("other", domain.RolePublisher)
	_, adminTok := s.tokenFor("boss", domain.RoleAdmin)

	rec := s.do(http.MethodPost, "/api/works", userTok, film("Nope"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/works", ownerTok, film("Mine"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	work := decode[domain.Work](t, rec)
	assert.Equal(t, ownerID, work.CreatedBy)
	assert.Equal(t, []string{"A", "B"}, []string(work.Cast))

	rec = s.do(http.MethodPatch, "/api/works/"+work.ID, otherTok, map[string]string{"nameEnglish": "Stolen"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPatch, "/api/works/missing", otherTok, map[string]string{"nameEnglish": "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "WORK_NOT_FOUND", errorCode(t, rec))

	rec = s.do(http.MethodPatch, "/api/works/"+work.ID, ownerTok, map[string]string{"nameEnglish": "Renamed", "createdBy": "someone"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.Work](t, rec)
	assert.Equal(t, "Renamed", updated.NameEnglish)
	assert.Equal(t, ownerID, updated.CreatedBy)

	rec = s.do(http.MethodGet, "/api/works/"+work.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/works", otherTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[domain.WorkPage](t, rec).Total)

	rec = s.do(http.MethodGet, "/api/works/public", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[domain.WorkPage](t, rec).Total)

	rec = s.do(http.MethodDelete, "/api/works/"+work.ID, adminTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateWorkWithImage(t *testing.T) {
	s := newTestServer(t)
	_, tok := s.tokenFor("pub", domain.RolePublisher)
	fields := map[string]string{
		"type":              "series",
		"nameArabic":        "مسلسل",
		"nameEnglish":       "Series",
		"year":              "2010",
		"director":          "D",
		"assistantDirector": "AD",
		"genre":             "Drama",
		"cast":              `["One", "Two"]`,
		"country":           "Syria",
		"filmingLocation":   "Damascus",
		"summary":           "S",
		"seasonsCount":      "2",
		"episodesCount":     "30",
	}

	rec := s.doMultipart("/api/works/with-image", tok, fields, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.doMultipart("/api/works/with-image", tok, fields, "image", pngBytes(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	work := decode[domain.Work](t, rec)
	assert.Equal(t, []string{"One", "Two"}, []string(work.Cast))
	require.NotNil(t, work.SeasonsCount)
	assert.Equal(t, 2, *work.SeasonsCount)
	assert.NotEmpty(t, work.PosterPublicID)

	// Загруженный файл доступен через /uploads/.
	req := httptest.NewRequest(http.MethodGet, "/uploads/"+work.PosterPublicID, nil)
	fileRec := httptest.NewRecorder()
	s.handler.ServeHTTP(fileRec, req)
	assert.Equal(t, http.StatusOK, fileRec.Code)
}

func TestFavoritesEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, pubTok := s.tokenFor("pub", domain.RolePublisher)
	_, userTok := s.tokenFor("viewer", domain.RoleUser)
	work := decode[domain.Work](t, s.do(http.MethodPost, "/api/works", pubTok, film("Fav")))

	rec := s.do(http.MethodPost, "/api/users/favorites", userTok, map[string]string{"workId": work.ID})
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(http.MethodPost, "/api/users/favorites", userTok, map[string]string{"workId": work.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/users/favorites/check/"+work.ID, userTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[domain.FavoriteStatus](t, rec).IsFavorite)

	rec = s.do(http.MethodGet, "/api/users/favorites", userTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{work.ID}, decode[domain.FavoriteList](t, rec).Favorites)

	rec = s.do(http.MethodDelete, "/api/users/favorites/"+work.ID, userTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodDelete, "/api/users/favorites/"+work.ID, userTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRatingsAndComments(t *testing.T) {
	s := newTestServer(t)
	_, pubTok := s.tokenFor("pub", domain.RolePublisher)
	_, userTok := s.tokenFor("viewer", domain.RoleUser)
	_, adminTok := s.tokenFor("boss", domain.RoleAdmin)
	work := decode[domain.Work](t, s.do(http.MethodPost, "/api/works", pubTok, film("Rated")))

	rec := s.do(http.MethodPost, "/api/ratings", userTok, map[string]interface{}{"workId": work.ID, "ratingValue": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/api/ratings", "", map[string]interface{}{"workId": work.ID, "ratingValue": 4})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/ratings/average/"+work.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	agg := decode[domain.AggregatedRating](t, rec)
	assert.Equal(t, 4.0, agg.Average)
	assert.EqualValues(t, 1, agg.Count)

	rec = s.do(http.MethodGet, "/api/ratings/publisher", pubTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Rating](t, rec), 1)
	rec = s.do(http.MethodGet, "/api/ratings/admin", userTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/comments", userTok, map[string]string{"workId": work.ID, "commentText": "great"})
	require.Equal(t, http.StatusCreated, rec.Code)
	comment := decode[domain.Comment](t, rec)
	assert.Equal(t, "viewer", comment.Username)

	rec = s.do(http.MethodGet, "/api/comments/work/"+work.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Comment](t, rec), 1)

	rec = s.do(http.MethodDelete, "/api/comments/"+comment.ID, userTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodDelete, "/api/comments/"+comment.ID, adminTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/api/site-reviews", userTok, map[string]interface{}{"ratingValue": 5, "description": "nice site"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/site-reviews", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.SiteReview](t, rec), 1)
}

func TestAdvertisementEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.tokenFor("boss", domain.RoleAdmin)
	_, userTok := s.tokenFor("viewer", domain.RoleUser)

	rec := s.doMultipart("/api/advertisements", userTok, map[string]string{"mediaType": "image"}, "media", pngBytes(t))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.doMultipart("/api/advertisements", adminTok, map[string]string{"name": "Promo", "mediaType": "image"}, "media", pngBytes(t))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ad := decode[domain.Advertisement](t, rec)

	rec = s.do(http.MethodPost, "/api/advertisements", adminTok, map[string]string{
		"name": "Inline", "mediaType": "image", "mediaData": "data:image/png;base64," + tinyPNG,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPatch, "/api/advertisements/"+ad.ID+"/toggle", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	toggle := decode[domain.AdvertisementToggle](t, rec)
	assert.False(t, toggle.Advertisement.IsActive)

	rec = s.do(http.MethodGet, "/api/advertisements/active", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decode[domain.AdvertisementList](t, rec)
	require.Equal(t, 1, active.Count)
	assert.Empty(t, active.Advertisements[0].CreatedBy)

	rec = s.do(http.MethodPatch, "/api/advertisements/"+ad.ID, adminTok, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", decode[domain.Advertisement](t, rec).Name)

	rec = s.do(http.MethodDelete, "/api/advertisements/"+ad.ID, adminTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(http.MethodGet, "/api/advertisements/"+ad.ID, adminTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.tokenFor("boss", domain.RoleAdmin)

	rec := s.do(http.MethodPost, "/api/contact", "", map[string]string{"name": "Sara", "email": "sara@mail.test", "message": "Hello"})
	require.Equal(t, http.StatusCreated, rec.Code)
	receipt := decode[domain.ContactReceipt](t, rec)
	require.NotEmpty(t, receipt.ContactID)

	rec = s.do(http.MethodGet, "/api/contact", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/contact/unread", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[domain.ContactList](t, rec).Count)

	rec = s.do(http.MethodPatch, "/api/contact/"+receipt.ContactID+"/read", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[domain.ContactUpdate](t, rec).Contact.IsRead)

	rec = s.do(http.MethodDelete, "/api/contact/"+receipt.ContactID, adminTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecoverMiddleware(t *testing.T) {
	h := api.NewHTTPHandler(api.Services{}, nil, logging.Discard(), 0)
	panicky := h.Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }))

	rec := httptest.NewRecorder()
	panicky.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL", errorCode(t, rec))
	assert.NotContains(t, rec.Body.String(), "boom")
}
