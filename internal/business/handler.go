// AngelaMos | 2026
// handler.go

package business

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hawkersg/hawker-backend/internal/core"
	"github.com/hawkersg/hawker-backend/internal/media"
	"github.com/hawkersg/hawker-backend/internal/middleware"
	"github.com/hawkersg/hawker-backend/internal/user"
)

const multipartMemory = 1 << 20

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

// RegisterRoutes mounts /businesses. Reads are public; writes need a
// business token whose license matches the path.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	signupLimit func(http.Handler) http.Handler,
) {
	r.Route("/businesses", func(r chi.Router) {
		r.With(signupLimit).Post("/signup", h.Signup)

		r.Route("/{license}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Get("/operating-hours", h.ListOperatingHours)
			r.Get("/menu-items", h.ListMenuItems)

			r.Group(func(r chi.Router) {
				r.Use(authenticator)
				r.Use(middleware.RequireUserType("business"))

				r.Patch("/profile", h.UpdateProfile)
				r.Delete("/", h.Delete)
				r.Put("/operating-hours", h.SetOperatingHours)
				r.Post("/menu-items", h.AddMenuItem)
				r.Post("/menu-items/import", h.ImportMenuItems)
				r.Patch("/menu-items/{itemID}", h.UpdateMenuItem)
				r.Delete("/menu-items/{itemID}", h.DeleteMenuItem)
			})
		})
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

	b, err := h.service.Create(r.Context(), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToBusinessResponse(b, true))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	license := chi.URLParam(r, "license")

	b, err := h.service.Get(r.Context(), license)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToBusinessResponse(b, false))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.photos.MaxBytes()*2)

	patch, ok := h.decodeProfilePatch(w, r)
	if !ok {
		return
	}

	b, err := h.service.UpdateProfile(
		r.Context(),
		chi.URLParam(r, "license"),
		middleware.GetLicenseNumber(r.Context()),
		patch,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToBusinessResponse(b, true))
}

func (h *Handler) decodeProfilePatch(w http.ResponseWriter, r *http.Request) (ProfilePatch, bool) {
	var req UpdateProfileRequest
	var patch ProfilePatch

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				media.WriteError(w, core.ErrPayloadTooLarge)
				return patch, false
			}
			core.BadRequest(w, "invalid multipart body")
			return patch, false
		}

		req = formProfileRequest(r)

		img, err := h.photos.FromMultipart(r, "photo")
		if err != nil {
			if !media.WriteError(w, err) {
				core.BadRequest(w, "invalid photo upload")
			}
			return patch, false
		}
		patch.Photo = img
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				media.WriteError(w, core.ErrPayloadTooLarge)
				return patch, false
			}
			core.BadRequest(w, "invalid request body")
			return patch, false
		}

		if req.Photo != nil && *req.Photo != "" {
			img, err := h.photos.FromDataURI(*req.Photo)
			if err != nil {
				if !media.WriteError(w, err) {
					core.BadRequest(w, "photo must be a base64 data URI")
				}
				return patch, false
			}
			patch.Photo = img
		}
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return patch, false
	}

	patch.StallName = req.StallName
	patch.Description = req.Description
	patch.StatusTodayOnly = req.StatusTodayOnly
	patch.RemovePhoto = req.RemovePhoto
	if req.Status != nil {
		status := Status(*req.Status)
		patch.Status = &status
	}

	return patch, true
}

// formProfileRequest treats a form key that is present as set, even when
// empty, and an absent key as unchanged.
func formProfileRequest(r *http.Request) UpdateProfileRequest {
	var req UpdateProfileRequest
	form := r.MultipartForm.Value

	value := func(key string) *string {
		vs, ok := form[key]
		if !ok || len(vs) == 0 {
			return nil
		}
		v := vs[0]
		return &v
	}

	req.StallName = value("stall_name")
	req.Description = value("description")
	if s := value("status"); s != nil && *s != "" {
		req.Status = s
	}
	if s := value("status_today_only"); s != nil {
		if b, err := strconv.ParseBool(*s); err == nil {
			req.StatusTodayOnly = &b
		}
	}
	if s := value("remove_photo"); s != nil {
		req.RemovePhoto, _ = strconv.ParseBool(*s)
	}

	return req
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		chi.URLParam(r, "license"),
		middleware.GetLicenseNumber(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListOperatingHours(w http.ResponseWriter, r *http.Request) {
	hours, err := h.service.ListOperatingHours(r.Context(), chi.URLParam(r, "license"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToOperatingHourResponses(hours))
}

func (h *Handler) SetOperatingHours(w http.ResponseWriter, r *http.Request) {
	var req SetOperatingHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	entries, msg := operatingHourInputs(req.OperatingHours)
	if msg != "" {
		core.BadRequest(w, msg)
		return
	}

	hours, err := h.service.SetOperatingHours(
		r.Context(),
		chi.URLParam(r, "license"),
		middleware.GetLicenseNumber(r.Context()),
		entries,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToOperatingHourResponses(hours))
}

// operatingHourInputs enforces end after start and one entry per day.
func operatingHourInputs(reqs []OperatingHourRequest) ([]OperatingHourInput, string) {
	seen := make(map[string]bool, len(reqs))
	entries := make([]OperatingHourInput, 0, len(reqs))

	for _, e := range reqs {
		if seen[e.Day] {
			return nil, e.Day + " is listed more than once"
		}
		seen[e.Day] = true

		start, err := core.ParseTimeOfDay(e.StartTime)
		if err != nil {
			return nil, "start_time must be a time in HH:MM format"
		}
		end, err := core.ParseTimeOfDay(e.EndTime)
		if err != nil {
			return nil, "end_time must be a time in HH:MM format"
		}
		if !end.After(start) {
			return nil, e.Day + ": end_time must be after start_time"
		}

		entries = append(entries, OperatingHourInput{
			Day:       e.Day,
			StartTime: start.Format(core.TimeOfDayLayout),
			EndTime:   end.Format(core.TimeOfDayLayout),
		})
	}

	return entries, ""
}

func (h *Handler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMenuItems(r.Context(), chi.URLParam(r, "license"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToMenuItemResponses(items))
}

func (h *Handler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	var req MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	price, err := core.ParseMoney(string(req.Price))
	if err != nil {
		core.BadRequest(w, "price must be a non-negative amount with at most 2 decimal places")
		return
	}

	item, err := h.service.AddMenuItem(
		r.Context(),
		chi.URLParam(r, "license"),
		middleware.GetLicenseNumber(r.Context()),
		MenuItemInput{Name: req.Name, Price: price, Photo: req.Photo},
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToMenuItemResponse(item))
}

func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req MenuItemPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	patch := MenuItemPatch{
		Name:        req.Name,
		Photo:       req.Photo,
		RemovePhoto: req.RemovePhoto,
	}
	if req.Price != nil {
		price, err := core.ParseMoney(string(*req.Price))
		if err != nil {
			core.BadRequest(w, "price must be a non-negative amount with at most 2 decimal places")
			return
		}
		patch.Price = &price
	}

	item, err := h.service.UpdateMenuItem(
		r.Context(),
		chi.URLParam(r, "license"),
		middleware.GetLicenseNumber(r.Context()),
		chi.URLParam(r, "itemID"),
		patch,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToMenuItemResponse(item))
}

func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteMenuItem(
		r.Context(),
		chi.URLParam(r, "license"),
		middleware.GetLicenseNumber(r.Context()),
		chi.URLParam(r, "itemID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ImportMenuItems(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.photos.MaxBytes())

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			core.JSONError(w, core.PayloadTooLargeError("spreadsheet exceeds the upload size limit"))
			return
		}
		core.BadRequest(w, "invalid multipart body")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		core.BadRequest(w, "file is required")
		return
	}
	defer file.Close() //nolint:errcheck

	items, err := h.service.ImportMenuItems(
		r.Context(),
		chi.URLParam(r, "license"),
		middleware.GetLicenseNumber(r.Context()),
		file,
	)
	if err != nil {
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			core.BadRequest(w, rowErr.Error())
			return
		}
		writeError(w, err)
		return
	}

	core.Created(w, ToMenuItemResponses(items))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMenuItemNotFound):
		core.NotFound(w, "menu item")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "business")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you can only manage your own stall")
	case errors.Is(err, ErrDuplicateLicense):
		core.JSONError(w, core.DuplicateError("license number"))
	case errors.Is(err, user.ErrDuplicateEmail):
		core.JSONError(w, core.DuplicateError("email"))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	case media.WriteError(w, err):
	default:
		core.InternalServerError(w, err)
	}
}
