// AngelaMos | 2026
// handler.go

package content

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

type Handler[T any, P interface {
	*T
	Item
}] struct {
	service   *Service[T, P]
	validator *validator.Validate
}

func NewHandler[T any, P interface {
	*T
	Item
}](service *Service[T, P]) *Handler[T, P] {
	return &Handler[T, P]{
		service:   service,
		validator: access.NewValidator(),
	}
}

// RegisterRoutes mounts the gated read routes. optionalAuth attaches a
// principal when the request carries a valid token and lets anonymous
// requests through otherwise.
func (h *Handler[T, P]) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/"+h.service.Kind().Name, func(r chi.Router) {
		r.Use(optionalAuth)

		r.Get("/", h.List)
		r.Get("/{key}", h.Get)
	})
}

func (h *Handler[T, P]) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/"+h.service.Kind().Name, func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Post("/", h.Create)
		r.Post("/bulk-delete", h.BulkDelete)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler[T, P]) List(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(h.service.Kind(), r.URL.Query())
	if err != nil {
		core.BadRequest(w, "unknown tier filter")
		return
	}

	items, total, err := h.service.List(r.Context(), access.FromContext(r.Context()), params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Paginated(w, items, params.Page, params.PageSize, total)
}

func (h *Handler[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(
		r.Context(),
		access.FromContext(r.Context()),
		chi.URLParam(r, "key"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, detail)
}

func (h *Handler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	principal := access.FromContext(r.Context())
	created, err := h.service.Create(r.Context(), principal.UserID, item)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, created)
}

func (h *Handler[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), item)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, updated)
}

func (h *Handler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler[T, P]) BulkDelete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}

	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	removed, err := h.service.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, BulkDeleteResponse{Removed: removed})
}

func (h *Handler[T, P]) decodeItem(w http.ResponseWriter, r *http.Request) (*T, bool) {
	item := new(T)
	if err := json.NewDecoder(r.Body).Decode(item); err != nil {
		if errors.Is(err, access.ErrUnknownTier) {
			core.BadRequest(w, "unknown tier")
			return nil, false
		}
		core.BadRequest(w, "invalid request body")
		return nil, false
	}

	if err := h.validator.Struct(item); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return nil, false
	}

	return item, true
}

func (h *Handler[T, P]) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, h.service.Kind().Name)
	case errors.Is(err, access.ErrUnknownTier):
		core.BadRequest(w, "unknown tier")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid input")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("slug"))
	default:
		core.InternalServerError(w, err)
	}
}

// confirmed answers 400 unless the request carries confirm=true.
func confirmed(w http.ResponseWriter, r *http.Request) bool {
	ok, err := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err != nil || !ok {
		core.BadRequest(w, "destructive action requires confirm=true")
		return false
	}
	return true
}
