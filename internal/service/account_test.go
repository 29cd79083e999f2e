package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
)

func TestSignup_RoleAndDuplicateEmail(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()

	u := e.signup(t, "layla", "Layla@Films.test")
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, "layla@films.test", u.Email)

	_, err := e.accounts.Signup(ctx, domain.SignupRequest{Username: "other", Email: "layla@films.test", Password: "secret123"}, nil)
	assert.ErrorIs(t, err, domain.ErrEmailInUse)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestSignup_Validation(t *testing.T) {
	e := newEnv(t, false)
	_, err := e.accounts.Signup(context.Background(), domain.SignupRequest{Username: " ", Email: "not-an-email", Password: "123"}, nil)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestSignup_UploadFailureCreatesNothing(t *testing.T) {
	e := newEnv(t, false)
	e.media.fail = true
	ctx := context.Background()

	avatar := &media.Upload{DataURI: "data:image/png;base64,AAAA"}
	_, err := e.accounts.Signup(ctx, domain.SignupRequest{Username: "omar", Email: "omar@films.test", Password: "secret123"}, avatar)
	assert.Equal(t, domain.KindUploadFailed, domain.KindOf(err))

	_, err = e.stores.Users.GetByEmail(ctx, "omar@films.test")
	assert.Error(t, err)
}

func TestSignup_WithAvatar(t *testing.T) {
	e := newEnv(t, false)
	avatar := &media.Upload{DataURI: "data:image/png;base64,AAAA"}
	u, err := e.accounts.Signup(context.Background(), domain.SignupRequest{Username: "omar", Email: "omar@films.test", Password: "secret123"}, avatar)
	require.NoError(t, err)
	require.NotNil(t, u.ProfileImage)
	assert.True(t, strings.HasPrefix(u.ProfileImage.PublicID, media.FolderProfiles+"/"))
}

func TestSignin(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	u := e.signup(t, "layla", "layla@films.test")

	res, err := e.accounts.Signin(ctx, domain.SigninRequest{Email: "LAYLA@films.test", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	claims, err := e.tokens.Validate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "user", claims.Role)

	_, err = e.accounts.Signin(ctx, domain.SigninRequest{Email: "layla@films.test", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = e.accounts.Signin(ctx, domain.SigninRequest{Email: "nobody@films.test", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestPasswordReset_FullCycle(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	e.signup(t, "layla", "layla@films.test")

	ack, err := e.accounts.RequestPasswordReset(ctx, domain.ForgotPasswordRequest{Email: "layla@films.test"})
	require.NoError(t, err)
	assert.NotEmpty(t, ack.Message)

	msgs := e.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "layla@films.test", msgs[0].To)
	token := e.notifier.lastResetToken(t)

	_, err = e.accounts.CompletePasswordReset(ctx, token, domain.ResetPasswordRequest{NewPassword: "brand-new"})
	require.NoError(t, err)

	_, err = e.accounts.Signin(ctx, domain.SigninRequest{Email: "layla@films.test", Password: "brand-new"})
	assert.NoError(t, err)
	_, err = e.accounts.Signin(ctx, domain.SigninRequest{Email: "layla@films.test", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Повторное использование токена невозможно.
	_, err = e.accounts.CompletePasswordReset(ctx, token, domain.ResetPasswordRequest{NewPassword: "again-new"})
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}

func TestPasswordReset_NewRequestInvalidatesPrevious(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	e.signup(t, "layla", "layla@films.test")

	_, err := e.accounts.RequestPasswordReset(ctx, domain.ForgotPasswordRequest{Email: "layla@films.test"})
	require.NoError(t, err)
	first := e.notifier.lastResetToken(t)

	_, err = e.accounts.RequestPasswordReset(ctx, domain.ForgotPasswordRequest{Email: "layla@films.test"})
	require.NoError(t, err)
	second := e.notifier.lastResetToken(t)
	require.NotEqual(t, first, second)

	_, err = e.accounts.CompletePasswordReset(ctx, first, domain.ResetPasswordRequest{NewPassword: "brand-new"})
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
	_, err = e.accounts.CompletePasswordReset(ctx, second, domain.ResetPasswordRequest{NewPassword: "brand-new"})
	assert.NoError(t, err)
}

func TestPasswordReset_Expired(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	e.signup(t, "layla", "layla@films.test")

	_, err := e.accounts.RequestPasswordReset(ctx, domain.ForgotPasswordRequest{Email: "layla@films.test"})
	require.NoError(t, err)
	token := e.notifier.lastResetToken(t)

	e.clock.Advance(time.Hour + time.Second)
	_, err = e.accounts.CompletePasswordReset(ctx, token, domain.ResetPasswordRequest{NewPassword: "brand-new"})
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
	assert.Equal(t, domain.KindTokenInvalidOrExpired, domain.KindOf(err))
}

func TestPasswordReset_UnknownEmailAcknowledged(t *testing.T) {
	e := newEnv(t, false)
	ack, err := e.accounts.RequestPasswordReset(context.Background(), domain.ForgotPasswordRequest{Email: "ghost@films.test"})
	require.NoError(t, err)
	assert.NotEmpty(t, ack.Message)
	assert.Empty(t, e.notifier.messages())
}

func TestPasswordReset_DeliveryFailure(t *testing.T) {
	t.Run("lenient", func(t *testing.T) {
		e := newEnv(t, false)
		e.signup(t, "layla", "layla@films.test")
		e.notifier.fail = true

		ack, err := e.accounts.RequestPasswordReset(context.Background(), domain.ForgotPasswordRequest{Email: "layla@films.test"})
		require.NoError(t, err)
		assert.NotEmpty(t, ack.Message)

		u, err := e.stores.Users.GetByEmail(context.Background(), "layla@films.test")
		require.NoError(t, err)
		assert.NotEmpty(t, u.ResetTokenHash)
	})

	t.Run("strict", func(t *testing.T) {
		e := newEnv(t, true)
		e.signup(t, "layla", "layla@films.test")
		e.notifier.fail = true

		_, err := e.accounts.RequestPasswordReset(context.Background(), domain.ForgotPasswordRequest{Email: "layla@films.test"})
		assert.Equal(t, domain.KindDependencyFailed, domain.KindOf(err))
	})
}

func TestCompletePasswordReset_EmptyToken(t *testing.T) {
	e := newEnv(t, false)
	_, err := e.accounts.CompletePasswordReset(context.Background(), "  ", domain.ResetPasswordRequest{NewPassword: "brand-new"})
	assert.ErrorIs(t, err, domain.ErrResetTokenInvalid)
}

func TestUpdateProfile_ReplacesAvatar(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	u, err := e.accounts.Signup(ctx, domain.SignupRequest{Username: "omar", Email: "omar@films.test", Password: "secret123"},
		&media.Upload{DataURI: "data:image/png;base64,AAAA"})
	require.NoError(t, err)
	oldID := u.ProfileImage.PublicID

	updated, err := e.accounts.UpdateProfile(ctx, u.ID, domain.UpdateProfileRequest{Username: strPtr("omar2")},
		&media.Upload{DataURI: "data:image/png;base64,BBBB"})
	require.NoError(t, err)
	assert.Equal(t, "omar2", updated.Username)
	assert.NotEqual(t, oldID, updated.ProfileImage.PublicID)
	assert.Contains(t, e.media.deleted, oldID)
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	e := newEnv(t, false)
	e.signup(t, "layla", "layla@films.test")
	u := e.signup(t, "omar", "omar@films.test")

	_, err := e.accounts.UpdateProfile(context.Background(), u.ID, domain.UpdateProfileRequest{Email: strPtr("LAYLA@films.test")}, nil)
	assert.ErrorIs(t, err, domain.ErrEmailInUse)
}

func TestFavorites(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	publisher := e.userWithRole(t, "pub", domain.RolePublisher)
	w := e.createWork(t, publisher, "Cairo Station")
	u := e.signup(t, "layla", "layla@films.test")

	_, err := e.accounts.AddFavorite(ctx, u.ID, domain.FavoriteRequest{WorkID: "missing"})
	assert.ErrorIs(t, err, domain.ErrWorkNotFound)

	status, err := e.accounts.AddFavorite(ctx, u.ID, domain.FavoriteRequest{WorkID: w.ID})
	require.NoError(t, err)
	assert.True(t, status.IsFavorite)

	_, err = e.accounts.AddFavorite(ctx, u.ID, domain.FavoriteRequest{WorkID: w.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyFavorite)

	check, err := e.accounts.IsFavorite(ctx, u.ID, w.ID)
	require.NoError(t, err)
	assert.True(t, check.IsFavorite)

	require.NoError(t, e.accounts.RemoveFavorite(ctx, u.ID, w.ID))
	assert.ErrorIs(t, e.accounts.RemoveFavorite(ctx, u.ID, w.ID), domain.ErrNotFavorite)

	list, err := e.accounts.Favorites(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Count)
}

func TestFavorites_DanglingFilteredOnRead(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	publisher := e.userWithRole(t, "pub", domain.RolePublisher)
	kept := e.createWork(t, publisher, "Kept")
	gone := e.createWork(t, publisher, "Gone")
	u := e.signup(t, "layla", "layla@films.test")

	for _, id := range []string{kept.ID, gone.ID} {
		_, err := e.accounts.AddFavorite(ctx, u.ID, domain.FavoriteRequest{WorkID: id})
		require.NoError(t, err)
	}
	require.NoError(t, e.catalog.DeleteWork(ctx, publisher, gone.ID))

	list, err := e.accounts.Favorites(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{kept.ID}, list.Favorites)
	assert.Equal(t, 1, list.Count)

	// Ссылка остается в хранилище: удаление работы не каскадируется.
	raw, err := e.stores.Users.ListFavorites(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, raw, 2)
}

func TestCreateUserByAdmin(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()

	u, err := e.accounts.CreateUserByAdmin(ctx, domain.CreateUserRequest{Username: "plain", Email: "plain@films.test", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)

	_, err = e.accounts.CreateUserByAdmin(ctx, domain.CreateUserRequest{Username: "plain", Email: "fresh@films.test", Password: "secret123"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = e.accounts.CreateUserByAdmin(ctx, domain.CreateUserRequest{Username: "x", Email: "x@films.test", Password: "secret123", Role: "root"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestUpdateAndDeleteUserByAdmin(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()
	u := e.signup(t, "layla", "layla@films.test")

	updated, err := e.accounts.UpdateUserByAdmin(ctx, u.ID, domain.UpdateUserRequest{Role: strPtr("publisher"), Password: strPtr("changed1")})
	require.NoError(t, err)
	assert.Equal(t, domain.RolePublisher, updated.Role)

	_, err = e.accounts.Signin(ctx, domain.SigninRequest{Email: "layla@films.test", Password: "changed1"})
	require.NoError(t, err)

	require.NoError(t, e.accounts.DeleteUser(ctx, u.ID))
	_, err = e.accounts.Profile(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, e.accounts.DeleteUser(ctx, u.ID), domain.ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()

	admin, created, err := e.accounts.EnsureAdmin(ctx, "root@films.test", "root", "secret123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	again, created, err := e.accounts.EnsureAdmin(ctx, "root@films.test", "root", "secret123")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	u := e.signup(t, "layla", "layla@films.test")
	promoted, created, err := e.accounts.EnsureAdmin(ctx, "layla@films.test", "layla", "secret123")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, promoted.ID)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)
}
