package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-with-at-least-32-bytes!!"

func TestTokenManager_GenerateAndValidate(t *testing.T) {
	tm, err := NewTokenManager(testSecret, 24*time.Hour)
	require.NoError(t, err)

	token, err := tm.Generate("user-1", "publisher")
	require.NoError(t, err)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "publisher", claims.Role)
	assert.Equal(t, "arabfilms", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenManager_Expired(t *testing.T) {
	issued := time.Now().Add(-25 * time.Hour)
	old, err := NewTokenManager(testSecret, 24*time.Hour, WithClock(func() time.Time { return issued }))
	require.NoError(t, err)
	token, err := old.Generate("user-1", "user")
	require.NoError(t, err)

	tm, err := NewTokenManager(testSecret, 24*time.Hour)
	require.NoError(t, err)
	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	other, err := NewTokenManager("another-secret-key-with-enough-bytes-0000", time.Hour)
	require.NoError(t, err)
	token, err := other.Generate("user-1", "admin")
	require.NoError(t, err)

	tm, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		UserID: "user-1",
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tm, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	_, err = tm.Validate(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenManager_Garbage(t *testing.T) {
	tm, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	_, err = tm.Validate("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestResetToken(t *testing.T) {
	plain, hash, err := NewResetToken()
	require.NoError(t, err)
	assert.Len(t, plain, 64)
	assert.Len(t, hash, 64)
	assert.NotEqual(t, plain, hash)
	assert.Equal(t, hash, HashResetToken(plain))

	plain2, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, plain, plain2)
}
