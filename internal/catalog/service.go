// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/prepvault/internal/core"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, key string) (*Category, error) {
	return s.repo.GetCategory(ctx, key)
}

func (s *Service) CreateCategory(ctx context.Context, req CategoryRequest) (*Category, error) {
	slug, err := slugFor(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	c := &Category{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, req CategoryRequest) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	slug, err := slugFor(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}

	c.Name = strings.TrimSpace(req.Name)
	c.Slug = slug
	c.Description = req.Description
	c.UpdatedAt = s.now()

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) (*Removal, error) {
	removal, err := s.repo.DeleteCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	slog.Info("category deleted",
		"category_id", id,
		"subcategories", removal.Subcategories,
		"questions", removal.Questions,
	)
	return removal, nil
}

func (s *Service) ListSubcategories(ctx context.Context, categoryKey string) ([]Subcategory, error) {
	c, err := s.repo.GetCategory(ctx, categoryKey)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSubcategories(ctx, c.ID)
}

func (s *Service) GetSubcategory(ctx context.Context, key string) (*Subcategory, error) {
	return s.repo.GetSubcategory(ctx, key)
}

func (s *Service) CreateSubcategory(ctx context.Context, req SubcategoryRequest) (*Subcategory, error) {
	slug, err := slugFor(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub := &Subcategory{
		ID:          uuid.New().String(),
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) UpdateSubcategory(
	ctx context.Context,
	id string,
	req SubcategoryRequest,
) (*Subcategory, error) {
	sub, err := s.repo.GetSubcategory(ctx, id)
	if err != nil {
		return nil, err
	}

	slug, err := slugFor(req.Slug, req.Name)
	if err != nil {
		return nil, err
	}

	sub.CategoryID = req.CategoryID
	sub.Name = strings.TrimSpace(req.Name)
	sub.Slug = slug
	sub.Description = req.Description
	sub.UpdatedAt = s.now()

	if err := s.repo.UpdateSubcategory(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Service) DeleteSubcategory(ctx context.Context, id string) (*Removal, error) {
	removal, err := s.repo.DeleteSubcategory(ctx, id)
	if err != nil {
		return nil, err
	}

	slog.Info("subcategory deleted", "subcategory_id", id, "questions", removal.Questions)
	return removal, nil
}

func (s *Service) SubcategoryExists(ctx context.Context, id string) (bool, error) {
	return s.repo.SubcategoryExists(ctx, id)
}

func slugFor(explicit, name string) (string, error) {
	slug := core.Slugify(explicit)
	if slug == "" {
		slug = core.Slugify(name)
	}
	if slug == "" {
		return "", fmt.Errorf("slug from %q: %w", name, core.ErrInvalidInput)
	}
	return slug, nil
}
