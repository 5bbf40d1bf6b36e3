// AngelaMos | 2026
// handler.go

package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/middleware"
)

// SessionRevoker ends every refresh session after a credential change.
type SessionRevoker interface {
	LogoutAll(ctx context.Context, userID string) error
}

type Handler struct {
	service   *Service
	sessions  SessionRevoker
	validator *validator.Validate
}

func NewHandler(service *Service, sessions SessionRevoker) *Handler {
	return &Handler{service: service, sessions: sessions, validator: core.NewValidator()}
}

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Get("/users/email-available", h.EmailAvailable)
	r.With(authenticator).Put("/users/me/password", h.ChangePassword)
}

func (h *Handler) EmailAvailable(w http.ResponseWriter, r *http.Request) {
	email := NormalizeEmail(r.URL.Query().Get("email"))
	if err := h.validator.Var(email, "required,email,max=255"); err != nil {
		core.JSONError(w, core.ValidationError("email must be a valid email"))
		return
	}

	taken, err := h.service.EmailExists(r.Context(), email)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	core.OK(w, EmailAvailability{Email: email, Available: !taken})
}

// ChangePassword also signs the account out everywhere, including the
// session that made the request.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := core.Bind(r, h.validator, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		core.JSONError(w, core.UnauthorizedError("current password is incorrect"))
		return
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
		return
	case err != nil:
		core.InternalServerError(w, err)
		return
	}

	if h.sessions != nil {
		if err := h.sessions.LogoutAll(r.Context(), userID); err != nil {
			core.InternalServerError(w, err)
			return
		}
	}
	core.NoContent(w)
}
