// AngelaMos | 2026
// handler.go

package catalog

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

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: access.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{key}", h.GetCategory)
	r.Get("/categories/{key}/subcategories", h.ListSubcategories)
	r.Get("/subcategories/{key}", h.GetSubcategory)
}

// RegisterAdminRoutes mounts the write routes by full path; the importer
// registers under /admin/subcategories too.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Post("/admin/categories", h.CreateCategory)
		r.Put("/admin/categories/{id}", h.UpdateCategory)
		r.Delete("/admin/categories/{id}", h.DeleteCategory)

		r.Post("/admin/subcategories", h.CreateSubcategory)
		r.Put("/admin/subcategories/{id}", h.UpdateSubcategory)
		r.Delete("/admin/subcategories/{id}", h.DeleteSubcategory)
	})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCategory(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err, "category")
		return
	}

	core.OK(w, c)
}

func (h *Handler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.ListSubcategories(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err, "category")
		return
	}

	core.OK(w, subs)
}

func (h *Handler) GetSubcategory(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.GetSubcategory(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err, "subcategory")
		return
	}

	core.OK(w, sub)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		writeError(w, err, "category")
		return
	}

	core.Created(w, c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err, "category")
		return
	}

	core.OK(w, c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}

	removal, err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "category")
		return
	}

	core.OK(w, removal)
}

func (h *Handler) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req SubcategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	sub, err := h.service.CreateSubcategory(r.Context(), req)
	if err != nil {
		writeError(w, err, "subcategory")
		return
	}

	core.Created(w, sub)
}

func (h *Handler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	var req SubcategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	sub, err := h.service.UpdateSubcategory(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, err, "subcategory")
		return
	}

	core.OK(w, sub)
}

func (h *Handler) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}

	removal, err := h.service.DeleteSubcategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "subcategory")
		return
	}

	core.OK(w, removal)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func writeError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("slug"))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid "+resource)
	default:
		core.InternalServerError(w, err)
	}
}

func confirmed(w http.ResponseWriter, r *http.Request) bool {
	ok, err := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err != nil || !ok {
		core.BadRequest(w, "destructive action requires confirm=true")
		return false
	}
	return true
}
