// AngelaMos | 2026
// handler.go

package hawker

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hawkersg/hawker-backend/internal/business"
	"github.com/hawkersg/hawker-backend/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/hawker-centres", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{centreID}", h.Get)
		r.Get("/{centreID}/stalls", h.ListStalls)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
	}
	params.Normalize()

	list, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToCentreResponses(list), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "centreID"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToCentreResponse(c))
}

func (h *Handler) ListStalls(w http.ResponseWriter, r *http.Request) {
	stalls, err := h.service.ListStalls(r.Context(), chi.URLParam(r, "centreID"))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]business.BusinessResponse, 0, len(stalls))
	for i := range stalls {
		out = append(out, business.ToBusinessResponse(&stalls[i], false))
	}
	core.OK(w, out)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "hawker centre")
		return
	}
	core.InternalServerError(w, err)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
