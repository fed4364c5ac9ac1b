// AngelaMos | 2026
// repository.go

package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

type Repository[T any] interface {
	List(ctx context.Context, params ListParams) ([]T, int, error)
	Get(ctx context.Context, key string) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, id string) error
	// InsertMany writes items in a single statement: either every row is
	// stored or none is.
	InsertMany(ctx context.Context, items []T) (int, error)
	// BulkDelete removes every listed id in a single statement.
	BulkDelete(ctx context.Context, ids []string) (int64, error)
	CountByTier(ctx context.Context) (map[access.Tier]int, error)
}

type repository[T any] struct {
	db   core.DBTX
	kind Kind
}

func NewRepository[T any](db core.DBTX, kind Kind) Repository[T] {
	return &repository[T]{db: db, kind: kind}
}

func (r *repository[T]) List(ctx context.Context, params ListParams) ([]T, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if len(params.IDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("id::text = ANY($%d)", argIdx))
		args = append(args, pq.Array(params.IDs))
		argIdx++
	}

	columns := make([]string, 0, len(params.Exact))
	for column := range params.Exact {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	for _, column := range columns {
		conditions = append(conditions, fmt.Sprintf("%s::text = $%d", column, argIdx))
		args = append(args, params.Exact[column])
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", r.kind.Table, where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.kind.Name, err)
	}

	order := "DESC"
	if params.Ascending {
		order = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY created_at %s, id
		LIMIT $%d OFFSET $%d`,
		r.kind.selectList(), r.kind.Table, where, order, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	items := []T{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.kind.Name, err)
	}

	return items, total, nil
}

func (r *repository[T]) Get(ctx context.Context, key string) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s",
		r.kind.selectList(), r.kind.Table, r.kind.keyCondition())

	var item T
	err := r.db.GetContext(ctx, &item, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", r.kind.Name, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.kind.Name, err)
	}

	return &item, nil
}

func (r *repository[T]) Create(ctx context.Context, item *T) error {
	if _, err := r.db.NamedExecContext(ctx, r.kind.insertQuery(), item); err != nil {
		return r.writeError("create", err)
	}
	return nil
}

func (r *repository[T]) Update(ctx context.Context, item *T) error {
	result, err := r.db.NamedExecContext(ctx, r.kind.updateQuery(), item)
	if err != nil {
		return r.writeError("update", err)
	}
	return core.RequireAffected(result, "update "+r.kind.Name)
}

func (r *repository[T]) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id::text = $1", r.kind.Table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.kind.Name, err)
	}
	return core.RequireAffected(result, "delete "+r.kind.Name)
}

func (r *repository[T]) InsertMany(ctx context.Context, items []T) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if limit := r.kind.MaxInsertRows(); len(items) > limit {
		return 0, fmt.Errorf("insert %s: %d rows, at most %d: %w",
			r.kind.Name, len(items), limit, core.ErrInvalidInput)
	}

	if _, err := r.db.NamedExecContext(ctx, r.kind.insertQuery(), items); err != nil {
		return 0, r.writeError("insert", err)
	}

	return len(items), nil
}

func (r *repository[T]) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id::text = ANY($1)", r.kind.Table),
		pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("bulk delete %s: %w", r.kind.Name, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("bulk delete %s: %w", r.kind.Name, err)
	}

	return removed, nil
}

func (r *repository[T]) CountByTier(ctx context.Context) (map[access.Tier]int, error) {
	var rows []struct {
		Tier  access.Tier `db:"tier"`
		Count int         `db:"count"`
	}

	query := fmt.Sprintf(
		"SELECT tier, COUNT(*) AS count FROM %s GROUP BY tier", r.kind.Table)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count %s by tier: %w", r.kind.Name, err)
	}

	counts := make(map[access.Tier]int, len(access.Tiers()))
	for _, t := range access.Tiers() {
		counts[t] = 0
	}
	for _, row := range rows {
		counts[row.Tier] = row.Count
	}

	return counts, nil
}

func (r *repository[T]) writeError(op string, err error) error {
	switch {
	case core.IsDuplicateKeyError(err):
		return fmt.Errorf("%s %s: %w", op, r.kind.Name, core.ErrDuplicateKey)
	case core.IsForeignKeyError(err):
		return fmt.Errorf("%s %s: %w", op, r.kind.Name, core.ErrInvalidInput)
	default:
		return fmt.Errorf("%s %s: %w", op, r.kind.Name, err)
	}
}

// DeleteQuestionsInSubcategories removes the questions filed under any of
// the given subcategories. It is meant to run inside a caller's transaction.
func DeleteQuestionsInSubcategories(
	ctx context.Context,
	tx *sqlx.Tx,
	subcategoryIDs []string,
) (int64, error) {
	result, err := tx.ExecContext(ctx,
		"DELETE FROM questions WHERE subcategory_id::text = ANY($1)",
		pq.Array(subcategoryIDs))
	if err != nil {
		return 0, fmt.Errorf("delete questions: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete questions: %w", err)
	}

	return removed, nil
}
