// AngelaMos | 2026
// handler.go

package importer

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

// RecordLoader is a JSON importer for one content kind.
type RecordLoader interface {
	Kind() string
	Import(ctx context.Context, payload []byte, importerID string) (*Result, error)
}

type SubcategoryChecker interface {
	SubcategoryExists(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	questions     *QuestionImporter
	records       map[string]RecordLoader
	subcategories SubcategoryChecker
	maxPayload    int64
}

func NewHandler(
	questions *QuestionImporter,
	subcategories SubcategoryChecker,
	maxPayload int64,
	records ...RecordLoader,
) *Handler {
	byKind := make(map[string]RecordLoader, len(records))
	for _, rl := range records {
		byKind[rl.Kind()] = rl
	}

	return &Handler{
		questions:     questions,
		records:       byKind,
		subcategories: subcategories,
		maxPayload:    maxPayload,
	}
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly, limiter func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)
		r.Use(limiter)

		r.Post("/admin/subcategories/{id}/import/csv", h.ImportQuestions)
		r.Post("/admin/import/{kind}", h.ImportRecords)
	})
}

func (h *Handler) ImportQuestions(w http.ResponseWriter, r *http.Request) {
	subcategoryID := chi.URLParam(r, "id")

	exists, err := h.subcategories.SubcategoryExists(r.Context(), subcategoryID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	if !exists {
		core.NotFound(w, "subcategory")
		return
	}

	payload, ok := h.readBody(w, r)
	if !ok {
		return
	}

	principal := access.FromContext(r.Context())
	result, err := h.questions.Import(r.Context(), string(payload), subcategoryID, principal.UserID)
	if errors.Is(err, ErrInterrupted) && result != nil {
		writeInterrupted(w, result, err)
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, result)
}

func (h *Handler) ImportRecords(w http.ResponseWriter, r *http.Request) {
	loader, ok := h.records[chi.URLParam(r, "kind")]
	if !ok {
		core.NotFound(w, "import target")
		return
	}

	payload, ok := h.readBody(w, r)
	if !ok {
		return
	}

	principal := access.FromContext(r.Context())
	result, err := loader.Import(r.Context(), payload, principal.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, result)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := http.MaxBytesReader(w, r.Body, h.maxPayload)

	payload, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			core.JSONError(w, core.NewAppError(err, "payload too large",
				http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"))
			return nil, false
		}
		core.BadRequest(w, "could not read request body")
		return nil, false
	}

	return payload, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingHeaders),
		errors.Is(err, ErrNoValidRows),
		errors.Is(err, ErrNotArray),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrEmptyPayload),
		errors.Is(err, ErrTooManyRecords):
		core.JSONError(w, core.ValidationError(err.Error()))
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("record"))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "records rejected by the store")
	default:
		core.InternalServerError(w, err)
	}
}

// writeInterrupted reports an import cut short between batches. The body
// still carries the result so the caller sees what was committed.
func writeInterrupted(w http.ResponseWriter, result *Result, err error) {
	core.JSON(w, http.StatusServiceUnavailable, core.Response{
		Success: false,
		Data:    result,
		Error: &core.ErrorBody{
			Code:    "IMPORT_INTERRUPTED",
			Message: err.Error(),
		},
	})
}
