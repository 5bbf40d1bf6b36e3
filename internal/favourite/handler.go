// AngelaMos | 2026
// handler.go

package favourite

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

// RegisterRoutes mounts /favourites on a router already scoped to
// /consumers/{consumerID} and guarded to the owning consumer.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/favourites", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Post("/toggle", h.Toggle)
		r.Get("/{targetType}/{targetID}", h.Status)
		r.Delete("/{targetType}/{targetID}", h.Remove)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByConsumer(r.Context(), chi.URLParam(r, "consumerID"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToFavouriteResponses(list))
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.decodeTarget(w, r)
	if !ok {
		return
	}

	added, err := h.service.Add(r.Context(), chi.URLParam(r, "consumerID"), ref)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := AddResponse{TargetType: string(ref.Type), TargetID: ref.ID, Added: added}
	if added {
		core.Created(w, resp)
		return
	}
	core.OK(w, resp)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.decodeTarget(w, r)
	if !ok {
		return
	}

	action, err := h.service.Toggle(r.Context(), chi.URLParam(r, "consumerID"), ref)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToggleResponse{
		TargetType:  string(ref.Type),
		TargetID:    ref.ID,
		Action:      action,
		IsFavourite: action == ActionAdded,
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	ref, err := target.Parse(chi.URLParam(r, "targetType"), chi.URLParam(r, "targetID"))
	if err != nil {
		core.BadRequest(w, "target_type must be business or hawker")
		return
	}

	is, err := h.service.IsFavourite(r.Context(), chi.URLParam(r, "consumerID"), ref)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, StatusResponse{IsFavourite: is})
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	ref, err := target.Parse(chi.URLParam(r, "targetType"), chi.URLParam(r, "targetID"))
	if err != nil {
		core.BadRequest(w, "target_type must be business or hawker")
		return
	}

	if err := h.service.Remove(r.Context(), chi.URLParam(r, "consumerID"), ref); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) decodeTarget(w http.ResponseWriter, r *http.Request) (target.Ref, bool) {
	var req TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return target.Ref{}, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return target.Ref{}, false
	}

	ref, err := target.Parse(req.TargetType, req.TargetID)
	if err != nil {
		core.BadRequest(w, "target_id is required")
		return target.Ref{}, false
	}
	return ref, true
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "favourite")
		return
	}
	core.InternalServerError(w, err)
}
