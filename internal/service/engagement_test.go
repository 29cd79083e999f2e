package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
)

func TestRate_UpsertAndAverage(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	publisher := e.userWithRole(t, "pub", domain.RolePublisher)
	w := e.createWork(t, publisher, "Rated")

	empty, err := e.ratings.AverageFor(ctx, w.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.Average)
	assert.Zero(t, empty.Count)

	users := []string{"u1", "u2", "u3"}
	values := []int{5, 4, 4}
	for i, name := range users {
		id := e.userWithRole(t, name, domain.RoleUser)
		_, err := e.ratings.Rate(ctx, id.UserID, domain.RateRequest{WorkID: w.ID, Value: values[i]})
		require.NoError(t, err)
	}
	agg, err := e.ratings.AverageFor(ctx, w.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, agg.Count)
	assert.Equal(t, 4.33, agg.Average)

	// Повторная оценка заменяет предыдущую.
	again := e.userWithRole(t, "u4", domain.RoleUser)
	_, err = e.ratings.Rate(ctx, again.UserID, domain.RateRequest{WorkID: w.ID, Value: 1})
	require.NoError(t, err)
	_, err = e.ratings.Rate(ctx, again.UserID, domain.RateRequest{WorkID: w.ID, Value: 3})
	require.NoError(t, err)
	agg, err = e.ratings.AverageFor(ctx, w.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, agg.Count)
	assert.Equal(t, 4.0, agg.Average)
}

func TestRate_Validation(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	publisher := e.userWithRole(t, "pub", domain.RolePublisher)
	w := e.createWork(t, publisher, "Rated")

	_, err := e.ratings.Rate(ctx, "u", domain.RateRequest{WorkID: w.ID, Value: 6})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = e.ratings.Rate(ctx, "u", domain.RateRequest{WorkID: w.ID, Value: 0})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = e.ratings.Rate(ctx, "u", domain.RateRequest{WorkID: "missing", Value: 3})
	assert.ErrorIs(t, err, domain.ErrWorkNotFound)
}

func TestRatingsForPublisher(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	alice := e.userWithRole(t, "alice", domain.RolePublisher)
	bob := e.userWithRole(t, "bob", domain.RolePublisher)
	wa := e.createWork(t, alice, "A")
	wb := e.createWork(t, bob, "B")

	_, err := e.ratings.Rate(ctx, "viewer", domain.RateRequest{WorkID: wa.ID, Value: 5})
	require.NoError(t, err)
	_, err = e.ratings.Rate(ctx, "viewer", domain.RateRequest{WorkID: wb.ID, Value: 2})
	require.NoError(t, err)

	ratings, err := e.ratings.RatingsForPublisher(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, wa.ID, ratings[0].WorkID)

	all, err := e.ratings.AllRatings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSiteReviews_OnePerUser(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	u := e.signup(t, "layla", "layla@films.test")

	_, err := e.reviews.Submit(ctx, u.ID, domain.SiteReviewRequest{Value: 3, Description: "ok"})
	require.NoError(t, err)
	r, err := e.reviews.Submit(ctx, u.ID, domain.SiteReviewRequest{Value: 5, Description: "great"})
	require.NoError(t, err)
	assert.Equal(t, "layla", r.Username)

	list, err := e.reviews.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Value)
	assert.Equal(t, "great", list[0].Description)
}

func TestComments(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	alice := e.userWithRole(t, "alice", domain.RolePublisher)
	w := e.createWork(t, alice, "Talked about")
	u := e.signup(t, "layla", "layla@films.test")

	_, err := e.comments.AddComment(ctx, u.ID, domain.CommentRequest{WorkID: "missing", Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrWorkNotFound)
	_, err = e.comments.AddComment(ctx, u.ID, domain.CommentRequest{WorkID: w.ID, Text: "   "})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	c, err := e.comments.AddComment(ctx, u.ID, domain.CommentRequest{WorkID: w.ID, Text: "  loved it  "})
	require.NoError(t, err)
	assert.Equal(t, "loved it", c.Text)
	assert.Equal(t, "layla", c.Username)

	forPublisher, err := e.comments.ForPublisher(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, forPublisher, 1)
	assert.Equal(t, "layla", forPublisher[0].Username)

	// Комментарии удаленного пользователя остаются, имя пустое.
	require.NoError(t, e.accounts.DeleteUser(ctx, u.ID))
	all, err := e.comments.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Username)

	require.NoError(t, e.comments.Delete(ctx, c.ID))
	assert.ErrorIs(t, e.comments.Delete(ctx, c.ID), domain.ErrCommentNotFound)
}

func TestAdvertisements(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	admin := e.userWithRole(t, "boss", domain.RoleAdmin)

	_, err := e.ads.Create(ctx, admin, domain.CreateAdvertisementRequest{Name: "Promo", MediaType: "video"}, nil)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = e.ads.Create(ctx, admin, domain.CreateAdvertisementRequest{Name: "Promo", MediaType: "gif", MediaData: "data:image/gif;base64,AAAA"}, nil)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	ad, err := e.ads.Create(ctx, admin, domain.CreateAdvertisementRequest{Name: " Promo ", MediaType: "video", MediaData: "data:video/mp4;base64,AAAA"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Promo", ad.Name)
	assert.True(t, ad.IsActive)
	assert.Equal(t, admin.UserID, ad.CreatedBy)
	require.NotEmpty(t, e.media.uploads)
	last := e.media.uploads[len(e.media.uploads)-1]
	assert.Equal(t, media.ResourceVideo, last.ResourceType)
	assert.Equal(t, media.FolderAdvertisements, last.Folder)

	active, err := e.ads.ListActive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, active.Count)
	assert.Empty(t, active.Advertisements[0].CreatedBy)

	toggled, err := e.ads.Toggle(ctx, ad.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Advertisement.IsActive)
	assert.Equal(t, "Advertisement deactivated successfully", toggled.Message)

	active, err = e.ads.ListActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, active.Count)
	all, err := e.ads.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, all.Count)
	assert.Equal(t, admin.UserID, all.Advertisements[0].CreatedBy)

	renamed, err := e.ads.Rename(ctx, ad.ID, domain.UpdateAdvertisementRequest{Name: "Spring"})
	require.NoError(t, err)
	assert.Equal(t, "Spring", renamed.Name)

	require.NoError(t, e.ads.Delete(ctx, ad.ID))
	assert.Contains(t, e.media.deleted, ad.Media.PublicID)
	_, err = e.ads.Get(ctx, ad.ID)
	assert.ErrorIs(t, err, domain.ErrAdvertisementAbsent)
}

func TestAdvertisements_UploadFailure(t *testing.T) {
	e := newEnv(t, false)
	admin := e.userWithRole(t, "boss", domain.RoleAdmin)
	e.media.fail = true

	_, err := e.ads.Create(context.Background(), admin, domain.CreateAdvertisementRequest{MediaType: "image"},
		&media.Upload{DataURI: "data:image/png;base64,AAAA"})
	assert.Equal(t, domain.KindUploadFailed, domain.KindOf(err))
}

func TestContact(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()

	_, err := e.contacts.Submit(ctx, domain.ContactRequest{Name: "Sara", Email: "bad", Message: "hi"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	receipt, err := e.contacts.Submit(ctx, domain.ContactRequest{Name: "Sara", Email: "Sara@Mail.test", Message: "Hello\nthere"})
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.ContactID)

	msgs := e.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "inbox@films.test", msgs[0].To)
	assert.Equal(t, "sara@mail.test", msgs[0].ReplyTo)

	unread, err := e.contacts.ListUnread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, unread.Count)

	upd, err := e.contacts.MarkRead(ctx, receipt.ContactID)
	require.NoError(t, err)
	assert.True(t, upd.Contact.IsRead)

	unread, err = e.contacts.ListUnread(ctx)
	require.NoError(t, err)
	assert.Zero(t, unread.Count)
	all, err := e.contacts.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, all.Count)

	require.NoError(t, e.contacts.Delete(ctx, receipt.ContactID))
	_, err = e.contacts.Get(ctx, receipt.ContactID)
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestContact_NotificationFailureIgnored(t *testing.T) {
	e := newEnv(t, false)
	e.notifier.fail = true
	receipt, err := e.contacts.Submit(context.Background(), domain.ContactRequest{Name: "Sara", Email: "sara@mail.test", Message: "hi"})
	require.NoError(t, err)

	stored, err := e.contacts.Get(context.Background(), receipt.ContactID)
	require.NoError(t, err)
	assert.Equal(t, "hi", stored.Message)
}
