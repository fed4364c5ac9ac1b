// AngelaMos | 2026
// handler.go

package profile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

// Sessions is the part of the session resolver the handler drives: tier
// and admin changes must drop the cached principal.
type Sessions interface {
	Refresh(ctx context.Context, userID string) (access.Principal, error)
	Invalidate(ctx context.Context, userID string) error
}

type Handler struct {
	service   *Service
	sessions  Sessions
	validator *validator.Validate
}

func NewHandler(service *Service, sessions Sessions) *Handler {
	return &Handler{
		service:   service,
		sessions:  sessions,
		validator: access.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/users/me", h.GetMe)
		r.Put("/users/me", h.UpdateMe)
		r.Post("/subscription/upgrade", h.Upgrade)
		r.Post("/session/refresh", h.RefreshSession)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Put("/{userID}/admin", h.SetAdmin)
		r.Put("/{userID}/tier", h.SetTier)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal := access.FromContext(r.Context())

	p, err := h.service.GetProfile(r.Context(), principal.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(p))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal := access.FromContext(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.UpdateProfile(r.Context(), principal.UserID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(p))
}

// Upgrade is the simulated checkout: the caller picks a tier and it is
// activated immediately.
func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	principal := access.FromContext(r.Context())

	var req SetTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sub, ok := h.changeTier(w, r, principal.UserID, req.Tier)
	if !ok {
		return
	}

	core.OK(w, ToSubscriptionResponse(sub))
}

func (h *Handler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	principal := access.FromContext(r.Context())

	refreshed, err := h.sessions.Refresh(r.Context(), principal.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, refreshed)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
		Search:   q.Get("search"),
	}

	if raw := q.Get("tier"); raw != "" {
		tier, err := access.ParseTier(raw)
		if err != nil {
			core.BadRequest(w, "unknown tier")
			return
		}
		params.Tier = &tier
	}

	if raw := q.Get("admin"); raw != "" {
		admin, err := strconv.ParseBool(raw)
		if err != nil {
			core.BadRequest(w, "admin must be true or false")
			return
		}
		params.Admin = &admin
	}

	profiles, total, err := h.service.ListProfiles(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(w, ToProfileResponseList(profiles), params.Page, params.PageSize, total)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProfile(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToProfileResponse(p))
}

func (h *Handler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	requester := access.FromContext(r.Context())
	targetID := chi.URLParam(r, "userID")

	var req SetAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.SetAdmin(r.Context(), requester.UserID, targetID, *req.Admin)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.invalidate(r.Context(), targetID)
	core.OK(w, ToProfileResponse(p))
}

func (h *Handler) SetTier(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userID")

	var req SetTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sub, ok := h.changeTier(w, r, targetID, req.Tier)
	if !ok {
		return
	}

	core.OK(w, ToSubscriptionResponse(sub))
}

func (h *Handler) changeTier(
	w http.ResponseWriter,
	r *http.Request,
	userID, tierName string,
) (*Subscription, bool) {
	tier, err := access.ParseTier(tierName)
	if err != nil {
		core.BadRequest(w, "unknown tier")
		return nil, false
	}

	sub, err := h.service.ChangeTier(r.Context(), userID, tier)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}

	h.invalidate(r.Context(), userID)
	return sub, true
}

func (h *Handler) invalidate(ctx context.Context, userID string) {
	if err := h.sessions.Invalidate(ctx, userID); err != nil {
		slog.Warn("session invalidation failed", "user_id", userID, "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "admins cannot revoke their own admin flag")
	default:
		core.InternalServerError(w, err)
	}
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
