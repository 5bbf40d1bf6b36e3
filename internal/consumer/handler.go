// AngelaMos | 2026
// handler.go

package consumer

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/media"
	"github.com/hawkersg/hawker-backend/internal/user"
)

type Handler struct {
	service   *Service
	photos    *media.Store
	validator *validator.Validate
}

func NewHandler(service *Service, photos *media.Store) *Handler {
	return &Handler{
		service:   service,
		photos:    photos,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts the account routes on a router already scoped to
// /consumers/{consumerID} and guarded to the owning consumer.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Patch("/", h.UpdateProfile)
	r.Delete("/", h.Delete)

	r.Route("/recent-searches", func(r chi.Router) {
		r.Get("/", h.ListRecentSearches)
		r.Post("/", h.AddRecentSearch)
		r.Delete("/", h.ClearRecentSearches)
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.Signup(r.Context(), req)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToConsumerResponse(c))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "consumerID"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToConsumerResponse(c))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.photos.MaxBytes()*2)

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			media.WriteError(w, core.ErrPayloadTooLarge)
			return
		}
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	patch := ProfilePatch{
		Username:    req.Username,
		RemovePhoto: req.RemovePhoto,
	}

	if req.ProfilePhoto != nil && *req.ProfilePhoto != "" {
		img, err := h.photos.FromDataURI(*req.ProfilePhoto)
		if err != nil {
			if media.WriteError(w, err) {
				return
			}
			core.BadRequest(w, "profile_photo must be a base64 data URI")
			return
		}
		patch.Photo = img
	}

	c, err := h.service.UpdateProfile(r.Context(), chi.URLParam(r, "consumerID"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToConsumerResponse(c))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "consumerID")); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListRecentSearches(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "consumerID"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, RecentSearchesResponse{RecentSearches: ToConsumerResponse(c).RecentSearches})
}

func (h *Handler) AddRecentSearch(w http.ResponseWriter, r *http.Request) {
	var req RecentSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	terms, err := h.service.AddRecentSearch(r.Context(), chi.URLParam(r, "consumerID"), req.Term)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, RecentSearchesResponse{RecentSearches: terms})
}

func (h *Handler) ClearRecentSearches(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearRecentSearches(r.Context(), chi.URLParam(r, "consumerID")); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "consumer")
		return
	}
	core.InternalServerError(w, err)
}
