// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/carterperez-dev/prepvault/internal/content"
	"github.com/carterperez-dev/prepvault/internal/core"
)

type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, key string) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id string) (*Removal, error)

	ListSubcategories(ctx context.Context, categoryID string) ([]Subcategory, error)
	GetSubcategory(ctx context.Context, key string) (*Subcategory, error)
	CreateSubcategory(ctx context.Context, s *Subcategory) error
	UpdateSubcategory(ctx context.Context, s *Subcategory) error
	DeleteSubcategory(ctx context.Context, id string) (*Removal, error)
	SubcategoryExists(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const categoryColumns = `id, name, slug, description, created_at, updated_at`

const subcategoryColumns = `id, category_id, name, slug, description, created_at, updated_at`

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name, id`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *repository) GetCategory(ctx context.Context, key string) (*Category, error) {
	var c Category
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id::text = $1 OR slug = $1`

	err := r.db.GetContext(ctx, &c, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

func (r *repository) CreateCategory(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, created_at, updated_at)
		VALUES (:id, :name, :slug, :description, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return r.storeError("create category", err)
	}
	return nil
}

func (r *repository) UpdateCategory(ctx context.Context, c *Category) error {
	query := `
		UPDATE categories
		SET name = :name, slug = :slug, description = :description, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		return r.storeError("update category", err)
	}
	return core.RequireAffected(result, "update category")
}

// DeleteCategory removes the category, every subcategory under it and the
// questions filed in those subcategories. Coding questions, system-design
// problems and projects that pointed at the category are kept unfiled.
func (r *repository) DeleteCategory(ctx context.Context, id string) (*Removal, error) {
	removal := &Removal{}

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var subIDs []string
		if err := tx.SelectContext(ctx, &subIDs,
			`SELECT id::text FROM subcategories WHERE category_id::text = $1`, id); err != nil {
			return fmt.Errorf("list subcategories: %w", err)
		}

		if len(subIDs) > 0 {
			n, err := content.DeleteQuestionsInSubcategories(ctx, tx, subIDs)
			if err != nil {
				return err
			}
			removal.Questions = n

			result, err := tx.ExecContext(ctx,
				`DELETE FROM subcategories WHERE id::text = ANY($1)`, pq.Array(subIDs))
			if err != nil {
				return fmt.Errorf("delete subcategories: %w", err)
			}
			if removal.Subcategories, err = result.RowsAffected(); err != nil {
				return fmt.Errorf("delete subcategories: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id::text = $1`, id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return core.RequireAffected(result, "delete category")
	})
	if err != nil {
		return nil, err
	}

	return removal, nil
}

func (r *repository) ListSubcategories(ctx context.Context, categoryID string) ([]Subcategory, error) {
	subs := []Subcategory{}
	query := `SELECT ` + subcategoryColumns + ` FROM subcategories
		WHERE category_id::text = $1
		ORDER BY name, id`

	if err := r.db.SelectContext(ctx, &subs, query, categoryID); err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return subs, nil
}

func (r *repository) GetSubcategory(ctx context.Context, key string) (*Subcategory, error) {
	var s Subcategory
	query := `SELECT ` + subcategoryColumns + ` FROM subcategories WHERE id::text = $1 OR slug = $1`

	err := r.db.GetContext(ctx, &s, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get subcategory: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subcategory: %w", err)
	}
	return &s, nil
}

func (r *repository) CreateSubcategory(ctx context.Context, s *Subcategory) error {
	query := `
		INSERT INTO subcategories (id, category_id, name, slug, description, created_at, updated_at)
		VALUES (:id, :category_id, :name, :slug, :description, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return r.storeError("create subcategory", err)
	}
	return nil
}

func (r *repository) UpdateSubcategory(ctx context.Context, s *Subcategory) error {
	query := `
		UPDATE subcategories
		SET category_id = :category_id, name = :name, slug = :slug,
			description = :description, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return r.storeError("update subcategory", err)
	}
	return core.RequireAffected(result, "update subcategory")
}

// DeleteSubcategory removes the subcategory and its questions together.
func (r *repository) DeleteSubcategory(ctx context.Context, id string) (*Removal, error) {
	removal := &Removal{}

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		n, err := content.DeleteQuestionsInSubcategories(ctx, tx, []string{id})
		if err != nil {
			return err
		}
		removal.Questions = n

		result, err := tx.ExecContext(ctx, `DELETE FROM subcategories WHERE id::text = $1`, id)
		if err != nil {
			return fmt.Errorf("delete subcategory: %w", err)
		}
		if err := core.RequireAffected(result, "delete subcategory"); err != nil {
			return err
		}
		removal.Subcategories = 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removal, nil
}

func (r *repository) SubcategoryExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM subcategories WHERE id::text = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("subcategory exists: %w", err)
	}
	return exists, nil
}

func (r *repository) storeError(op string, err error) error {
	switch {
	case core.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, core.ErrDuplicateKey)
	case core.IsForeignKeyError(err):
		return fmt.Errorf("%s: %w", op, core.ErrInvalidInput)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
