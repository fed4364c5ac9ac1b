// AngelaMos | 2026
// service.go

package content

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

// Service applies the access gate on every read. Writes are admin-only and
// guarded at the route level.
type Service[T any, P interface {
	*T
	Item
}] struct {
	repo Repository[T]
	gate *access.Gate
	kind Kind
	now  func() time.Time
}

func NewService[T any, P interface {
	*T
	Item
}](repo Repository[T], gate *access.Gate, kind Kind) *Service[T, P] {
	return &Service[T, P]{repo: repo, gate: gate, kind: kind, now: time.Now}
}

func (s *Service[T, P]) Kind() Kind {
	return s.kind
}

// List returns a page of items for principal. Items above the principal's
// tier stay in the listing, locked and stripped of gated fields.
func (s *Service[T, P]) List(
	ctx context.Context,
	principal access.Principal,
	params ListParams,
) ([]T, int, error) {
	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	for i := range items {
		item := P(&items[i])
		if !s.gate.Decide(principal, item.RequiredTier()).Visible() {
			item.Redact()
		}
	}

	return items, total, nil
}

func (s *Service[T, P]) Get(
	ctx context.Context,
	principal access.Principal,
	key string,
) (*Detail[T], error) {
	found, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	item := P(found)
	decision := s.gate.Decide(principal, item.RequiredTier())
	if decision.Visible() {
		return &Detail[T]{Item: *found}, nil
	}

	item.Redact()
	return &Detail[T]{
		Item:        *found,
		Locked:      true,
		Placeholder: s.gate.Placeholder(decision),
	}, nil
}

func (s *Service[T, P]) Create(ctx context.Context, createdBy string, item *T) (*T, error) {
	p := P(item)
	p.Prepare(createdBy, s.now())

	if !p.RequiredTier().Valid() {
		return nil, fmt.Errorf("create %s: %w", s.kind.Name, access.ErrUnknownTier)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service[T, P]) Update(ctx context.Context, key string, item *T) (*T, error) {
	existing, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	p := P(item)
	p.SetKey(P(existing).Key())
	p.Prepare("", s.now())

	if !p.RequiredTier().Valid() {
		return nil, fmt.Errorf("update %s: %w", s.kind.Name, access.ErrUnknownTier)
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, p.Key())
}

func (s *Service[T, P]) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// BulkDelete removes ids in one statement. Any failure means nothing was
// removed.
func (s *Service[T, P]) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("bulk delete %s: %w", s.kind.Name, core.ErrInvalidInput)
	}
	return s.repo.BulkDelete(ctx, ids)
}

func (s *Service[T, P]) CountByTier(ctx context.Context) (map[access.Tier]int, error) {
	return s.repo.CountByTier(ctx)
}

func (s *Service[T, P]) InsertMany(ctx context.Context, items []T) (int, error) {
	return s.repo.InsertMany(ctx, items)
}
