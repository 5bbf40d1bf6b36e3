// AngelaMos | 2026
// handler.go

package corppass

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hawkersg/hawker-backend/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth/corppass", func(r chi.Router) {
		r.Get("/authorize", h.Authorize)
		r.Get("/callback", h.Callback)
		r.Get("/mock-login", h.MockLogin)
		r.Post("/mock-login", h.MockLogin)
		r.Get("/status", h.Status)
	})
}

func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	target, err := h.service.Authorize(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) MockLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		core.BadRequest(w, "invalid form")
		return
	}

	target, err := h.service.MockLogin(r.Context(), r.Form.Get("state"), BusinessHint{
		UEN:          r.Form.Get("uen"),
		EntityName:   r.Form.Get("entity_name"),
		ContactEmail: r.Form.Get("contact_email"),
	})
	if err != nil {
		if errors.Is(err, core.ErrForbidden) {
			core.Forbidden(w, "mock login is only available in mock mode")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if providerErr := q.Get("error"); providerErr != "" {
		reason := q.Get("error_description")
		if reason == "" {
			reason = providerErr
		}
		core.BadRequest(w, "corppass authentication failed: "+reason)
		return
	}

	hint, err := h.service.Callback(r.Context(), q.Get("code"), q.Get("state"))
	switch {
	case errors.Is(err, ErrInvalidState):
		core.BadRequest(w, "invalid or expired state parameter")
		return
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "missing authorization code or state parameter")
		return
	case errors.Is(err, ErrProviderUnavailable):
		http.Redirect(w, r, h.service.FailureURL("corppass is unavailable"), http.StatusFound)
		return
	case err != nil:
		core.InternalServerError(w, err)
		return
	}

	target, err := h.service.SignupURL(hint)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.service.Status())
}
