// AngelaMos | 2026
// store_test.go

package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkersg/hawker-backend/internal/config"
	"github.com/hawkersg/hawker-backend/internal/core"
)

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	s, err := NewStore(config.UploadConfig{
		Dir:        t.TempDir(),
		MaxBytes:   maxBytes,
		PublicPath: "/uploads",
	}, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Unix(0, 1700000000000000000) }
	return s
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	s := newTestStore(t, 20<<20)

	t.Run("png", func(t *testing.T) {
		img, err := s.Decode(pngBytes(t))
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.MIME)
		assert.Equal(t, "png", img.Ext)
		assert.Equal(t, 4, img.Width)
		assert.Equal(t, 3, img.Height)
	})

	t.Run("gif is unsupported", func(t *testing.T) {
		_, err := s.Decode([]byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"))
		assert.ErrorIs(t, err, core.ErrUnsupportedMediaType)
	})

	t.Run("truncated png is unsupported", func(t *testing.T) {
		_, err := s.Decode(pngBytes(t)[:20])
		assert.ErrorIs(t, err, core.ErrUnsupportedMediaType)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := s.Decode(nil)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	})

	t.Run("over the limit", func(t *testing.T) {
		small := newTestStore(t, 16)
		_, err := small.Decode(pngBytes(t))
		assert.ErrorIs(t, err, core.ErrPayloadTooLarge)
	})
}

func TestFromDataURI(t *testing.T) {
	s := newTestStore(t, 20<<20)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t))

	img, err := s.FromDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "png", img.Ext)

	_, err = s.FromDataURI("https://example.com/cat.png")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = s.FromDataURI("data:image/png;base64,%%%")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestFromMultipart(t *testing.T) {
	s := newTestStore(t, 20<<20)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("photo", "stall.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("stall_name", "Ah Seng"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("PATCH", "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	img, err := s.FromMultipart(req, "photo")
	require.NoError(t, err)
	require.NotNil(t, img)

	missing, err := s.FromMultipart(req, "menu_photo")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveAndRemove(t *testing.T) {
	s := newTestStore(t, 20<<20)
	img, err := s.Decode(pngBytes(t))
	require.NoError(t, err)

	url, err := s.Save("L001/evil", img)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/l001_evil-1700000000000000000.png", url)

	onDisk := filepath.Join(s.dir, "l001_evil-1700000000000000000.png")
	_, err = os.Stat(onDisk)
	require.NoError(t, err)

	s.Remove("/elsewhere/l001_evil-1700000000000000000.png")
	_, err = os.Stat(onDisk)
	require.NoError(t, err)

	s.Remove(url)
	_, err = os.Stat(onDisk)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPing(t *testing.T) {
	s := newTestStore(t, 1<<20)
	require.NoError(t, s.Ping(context.Background()))

	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "probe file is cleaned up")

	require.NoError(t, os.RemoveAll(s.dir))
	assert.Error(t, s.Ping(context.Background()))
}
