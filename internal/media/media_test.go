package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devabdallah1411/arabFilmsServer/internal/logging"
)

// Минимальный валидный PNG 1x1.
var pngPixel, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

func TestDecodeDataURI(t *testing.T) {
	data, err := DecodeDataURI("data:image/png;base64," + base64.StdEncoding.EncodeToString(pngPixel))
	require.NoError(t, err)
	assert.Equal(t, pngPixel, data)

	plain, err := DecodeDataURI("data:text/plain,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(plain))

	_, err = DecodeDataURI("http://example.com/a.png")
	assert.ErrorIs(t, err, ErrInvalidDataURI)
	_, err = DecodeDataURI("data:image/png;base64,@@@")
	assert.ErrorIs(t, err, ErrInvalidDataURI)
}

func TestRead_SniffsContent(t *testing.T) {
	p, err := Read(Upload{Reader: bytes.NewReader(pngPixel), Filename: "fake.mp4"}, ResourceImage, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "image/png", p.MIME.String())
	assert.Equal(t, ".png", p.Extension())

	_, err = Read(Upload{Reader: strings.NewReader("just some text")}, ResourceImage, 1<<20)
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, err = Read(Upload{Reader: bytes.NewReader(pngPixel)}, ResourceVideo, 1<<20)
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, err = Read(Upload{}, ResourceImage, 1<<20)
	assert.ErrorIs(t, err, ErrEmptyUpload)

	_, err = Read(Upload{Reader: bytes.NewReader(pngPixel)}, ResourceImage, 10)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestUploadPresent(t *testing.T) {
	var nilUpload *Upload
	assert.False(t, nilUpload.Present())
	assert.False(t, (&Upload{DataURI: "  "}).Present())
	assert.True(t, (&Upload{DataURI: "data:,x"}).Present())
}

func TestLocalStore_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "http://localhost/uploads/", "arabfilm", 1<<20, logging.Discard())
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := s.Upload(ctx, Upload{DataURI: "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngPixel)}, Options{Folder: FolderPosters, ResourceType: ResourceImage})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref.PublicID, "arabfilm/posters/"))
	assert.Equal(t, "http://localhost/uploads/"+ref.PublicID, ref.URL)

	path := filepath.Join(dir, filepath.FromSlash(ref.PublicID))
	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, pngPixel, stored)

	require.NoError(t, s.Delete(ctx, ref.PublicID, ResourceImage))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	// Повторное удаление не ошибка.
	assert.NoError(t, s.Delete(ctx, ref.PublicID, ResourceImage))
}
