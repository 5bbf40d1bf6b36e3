// AngelaMos | 2026
// errors.go

package media

import (
	"errors"
	"net/http"

	"github.com/hawkersg/hawker-backend/internal/core"
)

// WriteError translates a photo failure into its HTTP response. It
// reports false when err is not a media failure.
func WriteError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, core.ErrPayloadTooLarge):
		core.JSONError(w, core.PayloadTooLargeError("photo exceeds the upload size limit"))
	case errors.Is(err, core.ErrUnsupportedMediaType):
		core.JSONError(w, core.UnsupportedMediaTypeError(
			"photo must be a JPEG, PNG or WebP image"))
	default:
		return false
	}
	return true
}
