// AngelaMos | 2026
// store.go

package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/hawkersg/hawker-backend/internal/config"
	"github.com/hawkersg/hawker-backend/internal/core"
)

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Image is a validated photo that has not yet been written to disk.
type Image struct {
	Data   []byte
	MIME   string
	Ext    string
	Width  int
	Height int
}

type Store struct {
	dir        string
	publicPath string
	maxBytes   int64
	logger     *slog.Logger
	now        func() time.Time
}

func NewStore(cfg config.UploadConfig, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		dir:        cfg.Dir,
		publicPath: strings.TrimRight(cfg.PublicPath, "/"),
		maxBytes:   cfg.MaxBytes,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Decode checks size, sniffed content type and that the bytes actually
// decode as an image of that type.
func (s *Store) Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode image: empty file: %w", core.ErrInvalidInput)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("decode image: %d bytes: %w", len(data), core.ErrPayloadTooLarge)
	}

	mt := mimetype.Detect(data)
	ext, ok := allowedTypes[mt.String()]
	if !ok {
		return nil, fmt.Errorf("decode image: %s: %w", mt.String(), core.ErrUnsupportedMediaType)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", core.ErrUnsupportedMediaType)
	}
	if "image/"+format != mt.String() {
		return nil, fmt.Errorf("decode image: %s declared as %s: %w",
			format, mt.String(), core.ErrUnsupportedMediaType)
	}

	return &Image{
		Data:   data,
		MIME:   mt.String(),
		Ext:    ext,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// FromDataURI accepts "data:image/png;base64,...." payloads.
func (s *Store) FromDataURI(uri string) (*Image, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("parse data uri: %w", core.ErrInvalidInput)
	}

	if int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxBytes+2 {
		return nil, fmt.Errorf("parse data uri: %w", core.ErrPayloadTooLarge)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("parse data uri: %w", core.ErrInvalidInput)
	}

	return s.Decode(data)
}

// FromMultipart reads the named file part. It returns nil without error
// when the part is absent.
func (s *Store) FromMultipart(r *http.Request, field string) (*Image, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("read %s: %w", field, core.ErrPayloadTooLarge)
		}
		return nil, fmt.Errorf("read %s: %w", field, core.ErrInvalidInput)
	}
	defer file.Close() //nolint:errcheck

	return s.readPart(file)
}

func (s *Store) readPart(file multipart.File) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return s.Decode(data)
}

// Save writes the image as <prefix>-<unixnano>.<ext> and returns the
// public URL path.
func (s *Store) Save(prefix string, img *Image) (string, error) {
	name := fmt.Sprintf("%s-%d.%s", sanitize(prefix), s.now().UnixNano(), img.Ext)

	if err := os.WriteFile(filepath.Join(s.dir, name), img.Data, 0o640); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return path.Join(s.publicPath, name), nil
}

// Remove deletes a previously saved file. Paths outside the upload
// directory are ignored.
func (s *Store) Remove(publicURL string) {
	if publicURL == "" || !strings.HasPrefix(publicURL, s.publicPath+"/") {
		return
	}

	name := path.Base(publicURL)
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove image failed", "path", publicURL, "error", err)
	}
}

// Handler serves the upload directory under the public path.
func (s *Store) Handler() http.Handler {
	return http.StripPrefix(s.publicPath, http.FileServer(http.Dir(s.dir)))
}

// Ping confirms the upload directory still accepts writes.
func (s *Store) Ping(_ context.Context) error {
	f, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return fmt.Errorf("upload dir not writable: %w", err)
	}
	name := f.Name()
	_ = f.Close()       //nolint:errcheck // empty probe file
	_ = os.Remove(name) //nolint:errcheck // best-effort cleanup
	return nil
}

func (s *Store) PublicPath() string {
	return s.publicPath
}

func sanitize(prefix string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(prefix) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "img"
	}
	return b.String()
}
