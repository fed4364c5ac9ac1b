// AngelaMos | 2026
// handler_test.go

package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passThrough(next http.Handler) http.Handler { return next }

func newCatalogRouter(t *testing.T) (*chi.Mux, sqlmock.Sqlmock) {
	t.Helper()

	repo, mock := newMockRepo(t)
	h := NewHandler(NewService(repo))

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	h.RegisterAdminRoutes(r, passThrough, passThrough)
	return r, mock
}

func TestCreateCategoryDerivesSlug(t *testing.T) {
	r, mock := newCatalogRouter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/categories",
		strings.NewReader(`{"name":"Backend Systems"}`)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var env struct {
		Data Category `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "backend-systems", env.Data.Slug)
	assert.NotEmpty(t, env.Data.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategoryRequiresName(t *testing.T) {
	r, mock := newCatalogRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/categories",
		strings.NewReader(`{"description":"no name"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoutesRequireConfirm(t *testing.T) {
	r, mock := newCatalogRouter(t)

	for _, path := range []string{"/admin/categories/cat-1", "/admin/subcategories/sub-1"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, path, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSubcategoryReportsRemoval(t *testing.T) {
	r, mock := newCatalogRouter(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM questions")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subcategories")).
		WithArgs("sub-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/subcategories/sub-1?confirm=true", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data Removal `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, Removal{Questions: 4, Subcategories: 1}, env.Data)
}

func TestListSubcategoriesUnknownCategory(t *testing.T) {
	r, mock := newCatalogRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories/nope/subcategories", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCategoryDuplicateSlug(t *testing.T) {
	r, mock := newCatalogRouter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categories")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/categories",
		strings.NewReader(`{"name":"Backend Systems"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "DUPLICATE")
}
