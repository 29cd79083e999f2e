package service_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devabdallah1411/arabFilmsServer/internal/access"
	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/logging"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
	"github.com/devabdallah1411/arabFilmsServer/internal/notify"
	"github.com/devabdallah1411/arabFilmsServer/internal/service"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
	"github.com/devabdallah1411/arabFilmsServer/pkg/auth"
)

const resetBase = "https://films.test/reset-password"

// recordingNotifier запоминает отправленные письма; fail заставляет Send вернуть ошибку.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	fail bool
}

func (n *recordingNotifier) Send(ctx context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) messages() []notify.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Message(nil), n.sent...)
}

var resetTokenRe = regexp.MustCompile(`reset-password/([0-9a-f]+)`)

// lastResetToken извлекает открытый токен из последнего письма сброса.
func (n *recordingNotifier) lastResetToken(t *testing.T) string {
	t.Helper()
	msgs := n.messages()
	require.NotEmpty(t, msgs)
	m := resetTokenRe.FindStringSubmatch(msgs[len(msgs)-1].HTML)
	require.Len(t, m, 2)
	return m[1]
}

// fakeMedia - медиа-хранилище в памяти.
type fakeMedia struct {
	mu      sync.Mutex
	seq     int
	uploads []media.Options
	deleted []string
	fail    bool
}

func (f *fakeMedia) Upload(ctx context.Context, upload media.Upload, opts media.Options) (domain.MediaRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.MediaRef{}, errors.New("media host down")
	}
	f.seq++
	f.uploads = append(f.uploads, opts)
	id := fmt.Sprintf("%s/obj-%d", opts.Folder, f.seq)
	return domain.MediaRef{PublicID: id, URL: "https://media.test/" + id}, nil
}

func (f *fakeMedia) Delete(ctx context.Context, publicID string, rt media.ResourceType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

// fakeClock - управляемый источник времени.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// env собирает сервисы поверх mock-хранилищ.
type env struct {
	stores   *store.Stores
	tokens   auth.TokenManager
	notifier *recordingNotifier
	media    *fakeMedia
	clock    *fakeClock

	accounts *service.AccountService
	catalog  *service.CatalogService
	ratings  *service.RatingService
	reviews  *service.SiteReviewService
	comments *service.CommentService
	ads      *service.AdvertisementService
	contacts *service.ContactService
}

func newEnv(t *testing.T, strictReset bool) *env {
	t.Helper()
	logger := logging.Discard()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	e := &env{
		stores:   store.NewMockStores(),
		tokens:   tokens,
		notifier: &recordingNotifier{},
		media:    &fakeMedia{},
		clock:    &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	v := domain.NewValidator()
	lookup := service.StoreWorkLookup{Works: e.stores.Works}
	guard := access.NewGuard(tokens, e.stores.Works, logger)

	e.accounts = service.NewAccountService(e.stores.Users, lookup, tokens, e.media, e.notifier, v, logger, service.AccountConfig{
		ResetTokenTTL:       time.Hour,
		ResetURLBase:        resetBase,
		StrictResetDelivery: strictReset,
		Now:                 e.clock.Now,
	})
	e.catalog = service.NewCatalogService(e.stores.Works, guard, e.media, v, logger)
	e.ratings = service.NewRatingService(e.stores.Ratings, e.stores.Works, lookup, v, logger)
	e.reviews = service.NewSiteReviewService(e.stores.SiteReviews, e.stores.Users, v, logger)
	e.comments = service.NewCommentService(e.stores.Comments, e.stores.Works, e.stores.Users, lookup, v, logger)
	e.ads = service.NewAdvertisementService(e.stores.Advertisements, e.media, v, logger)
	e.contacts = service.NewContactService(e.stores.Contacts, e.notifier, "inbox@films.test", v, logger)
	return e
}

func (e *env) signup(t *testing.T, username, email string) *domain.UserView {
	t.Helper()
	u, err := e.accounts.Signup(context.Background(), domain.SignupRequest{Username: username, Email: email, Password: "secret123"}, nil)
	require.NoError(t, err)
	return u
}

// userWithRole создает пользователя и возвращает его идентичность.
func (e *env) userWithRole(t *testing.T, username string, role domain.Role) domain.Identity {
	t.Helper()
	u, err := e.accounts.CreateUserByAdmin(context.Background(), domain.CreateUserRequest{
		Username: username,
		Email:    username + "@films.test",
		Password: "secret123",
		Role:     role.String(),
	})
	require.NoError(t, err)
	return domain.Identity{UserID: u.ID, Role: role}
}

func filmRequest(name string) domain.CreateWorkRequest {
	return domain.CreateWorkRequest{
		Type:              domain.WorkTypeFilm,
		NameArabic:        "فيلم " + name,
		NameEnglish:       name,
		Year:              2001,
		Director:          "Director",
		AssistantDirector: "Assistant",
		Genre:             "Drama",
		Cast:              domain.CastList{"Actor One", "Actor Two"},
		Country:           "Egypt",
		FilmingLocation:   "Cairo",
		Summary:           "A story.",
	}
}

func (e *env) createWork(t *testing.T, owner domain.Identity, name string) *domain.Work {
	t.Helper()
	w, err := e.catalog.CreateWork(context.Background(), &owner, filmRequest(name), nil)
	require.NoError(t, err)
	return w
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }
