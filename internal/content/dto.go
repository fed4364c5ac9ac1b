// AngelaMos | 2026
// dto.go

package content

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

type ListParams struct {
	Page     int
	PageSize int
	Search   string
	IDs      []string
	// Exact holds column to value pairs already checked against the kind.
	Exact     map[string]string
	Ascending bool
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ParseListParams reads list filters from a query string. Only filters the
// kind declares are accepted; tier values must name a known tier.
func ParseListParams(kind Kind, q url.Values) (ListParams, error) {
	params := ListParams{
		Page:      atoiDefault(q.Get("page"), 1),
		PageSize:  atoiDefault(q.Get("page_size"), 20),
		Search:    strings.TrimSpace(q.Get("search")),
		Exact:     map[string]string{},
		Ascending: strings.EqualFold(q.Get("order"), "asc"),
	}

	if raw := q.Get("ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				params.IDs = append(params.IDs, id)
			}
		}
	}

	for key, column := range kind.Filters {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}

		if key == "tier" {
			tier, err := access.ParseTier(raw)
			if err != nil {
				return ListParams{}, fmt.Errorf("%w: %w", core.ErrInvalidInput, err)
			}
			params.Exact[column] = tier.String()
			continue
		}

		params.Exact[column] = raw
	}

	params.Normalize()
	return params, nil
}

func atoiDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=500,dive,required"`
}

type BulkDeleteResponse struct {
	Removed int64 `json:"removed"`
}

// Detail is the single-item view. A hidden item is returned redacted with
// the placeholder the client should render instead.
type Detail[T any] struct {
	Item        T                   `json:"item"`
	Locked      bool                `json:"locked"`
	Placeholder *access.Placeholder `json:"placeholder,omitempty"`
}
