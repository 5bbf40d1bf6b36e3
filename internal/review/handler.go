// AngelaMos | 2026
// handler.go

package review

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/target"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterTargetRoutes mounts the public review reads.
func (h *Handler) RegisterTargetRoutes(r chi.Router) {
	r.Route("/targets/{targetType}/{targetID}/reviews", func(r chi.Router) {
		r.Get("/", h.ListForTarget)
		r.Get("/average", h.Average)
	})
}

// RegisterRoutes mounts /reviews on a router already scoped to
// /consumers/{consumerID} and guarded to the owning consumer.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.ListForConsumer)
		r.Post("/", h.Create)
		r.Patch("/{reviewID}", h.Update)
		r.Delete("/{reviewID}", h.Delete)
	})
}

func (h *Handler) ListForTarget(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathTarget(w, r)
	if !ok {
		return
	}

	list, err := h.service.ListForTarget(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponses(list))
}

func (h *Handler) Average(w http.ResponseWriter, r *http.Request) {
	ref, ok := pathTarget(w, r)
	if !ok {
		return
	}

	rating, err := h.service.AverageRating(r.Context(), ref)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToRatingResponse(string(ref.Type), ref.ID, rating))
}

func (h *Handler) ListForConsumer(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListForConsumer(r.Context(), chi.URLParam(r, "consumerID"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponses(list))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ref, err := target.Parse(req.TargetType, req.TargetID)
	if err != nil {
		core.BadRequest(w, "target_id is required")
		return
	}

	rv, err := h.service.Create(r.Context(), chi.URLParam(r, "consumerID"), CreateInput{
		Target:      ref,
		StarRating:  req.StarRating,
		Description: req.Description,
		Images:      req.Images,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToReviewResponse(rv))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	rv, err := h.service.Update(r.Context(),
		chi.URLParam(r, "reviewID"),
		chi.URLParam(r, "consumerID"),
		Patch{
			StarRating:  req.StarRating,
			Description: req.Description,
			Images:      req.Images,
		})
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponse(rv))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), chi.URLParam(r, "reviewID"), chi.URLParam(r, "consumerID"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func pathTarget(w http.ResponseWriter, r *http.Request) (target.Ref, bool) {
	ref, err := target.Parse(chi.URLParam(r, "targetType"), chi.URLParam(r, "targetID"))
	if err != nil {
		core.BadRequest(w, "target_type must be business or hawker")
		return target.Ref{}, false
	}
	return ref, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "review")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid review")
	default:
		core.InternalServerError(w, err)
	}
}
