// AngelaMos | 2026
// handler_test.go

package content

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/prepvault/internal/access"
)

func withPrincipal(p access.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), p)))
		})
	}
}

func passThrough(next http.Handler) http.Handler { return next }

func newQuestionRouter(repo *memQuestions, p access.Principal) *chi.Mux {
	h := NewHandler(newQuestionService(repo))

	r := chi.NewRouter()
	h.RegisterRoutes(r, withPrincipal(p))
	h.RegisterAdminRoutes(r, withPrincipal(p), passThrough)
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestHandlerDetailLockedIs200WithPlaceholder(t *testing.T) {
	r := newQuestionRouter(gatedQuestions(), access.Anonymous())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/questions/top", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)

	var detail struct {
		Locked      bool `json:"locked"`
		Placeholder struct {
			State        string `json:"state"`
			RequiredTier string `json:"required_tier"`
			Action       string `json:"action"`
			ActionURL    string `json:"action_url"`
		} `json:"placeholder"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.True(t, detail.Locked)
	assert.Equal(t, "hidden_not_authenticated", detail.Placeholder.State)
	assert.Equal(t, "Innovator", detail.Placeholder.RequiredTier)
	assert.Equal(t, "/login", detail.Placeholder.ActionURL)
}

func TestHandlerDetailMissingIs404(t *testing.T) {
	r := newQuestionRouter(gatedQuestions(), access.Anonymous())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/questions/ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, rec).Error.Code)
}

func TestHandlerListRejectsUnknownTierFilter(t *testing.T) {
	r := newQuestionRouter(gatedQuestions(), access.Anonymous())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/questions?tier=Platinum", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerListMarksLockedItems(t *testing.T) {
	explorer := access.Principal{UserID: "u", Authenticated: true}
	r := newQuestionRouter(gatedQuestions(), explorer)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/questions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var items []Question
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &items))
	require.Len(t, items, 3)

	locked := 0
	for _, q := range items {
		if q.Locked {
			locked++
			assert.Empty(t, q.Answer)
		}
	}
	assert.Equal(t, 2, locked)
}

func TestHandlerDeleteRequiresConfirm(t *testing.T) {
	repo := gatedQuestions()
	admin := access.Principal{UserID: "root", Authenticated: true, Admin: true}
	r := newQuestionRouter(repo, admin)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/questions/free", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, repo.items, "free")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/questions/free?confirm=true", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, repo.items, "free")
}

func TestHandlerBulkDelete(t *testing.T) {
	repo := gatedQuestions()
	admin := access.Principal{UserID: "root", Authenticated: true, Admin: true}
	r := newQuestionRouter(repo, admin)

	body := `{"ids":["free","mid"]}`

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/admin/questions/bulk-delete", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, repo.items, 3)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/admin/questions/bulk-delete?confirm=true", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BulkDeleteResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &resp))
	assert.Equal(t, int64(2), resp.Removed)
}

func TestHandlerCreate(t *testing.T) {
	admin := access.Principal{UserID: "root", Authenticated: true, Admin: true}

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "legacy tier name is accepted",
			body:   `{"title":"T","content":"C","answer":"A","type":"MC","level":"Easy","tier":"Voyager"}`,
			status: http.StatusCreated,
		},
		{
			name:   "unknown tier",
			body:   `{"title":"T","content":"C","answer":"A","type":"MC","level":"Easy","tier":"Gold"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing required fields",
			body:   `{"title":"T"}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemQuestions()
			r := newQuestionRouter(repo, admin)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/questions",
				strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusCreated {
				assert.Empty(t, repo.items)
				return
			}

			var created Question
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &created))
			assert.Equal(t, access.TierBuilder, created.Tier)
			require.NotNil(t, created.CreatedBy)
			assert.Equal(t, "root", *created.CreatedBy)
		})
	}
}
