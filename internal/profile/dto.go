// AngelaMos | 2026
// dto.go

package profile

import (
	"time"

	"github.com/carterperez-dev/prepvault/internal/access"
)

type UpdateProfileRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
}

type SetAdminRequest struct {
	Admin *bool `json:"admin" validate:"required"`
}

type SetTierRequest struct {
	Tier string `json:"tier" validate:"required,tier"`
}

type ProfileResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Admin     bool        `json:"admin"`
	Tier      access.Tier `json:"tier"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type SubscriptionResponse struct {
	Tier      access.Tier `json:"tier"`
	Status    string      `json:"status"`
	StartedAt time.Time   `json:"started_at"`
	Simulated bool        `json:"simulated"`
}

type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Tier     *access.Tier
	Admin    *bool
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

func ToProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Admin:     p.IsAdmin,
		Tier:      p.Tier,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func ToProfileResponseList(profiles []Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, ToProfileResponse(&profiles[i]))
	}
	return out
}

func ToSubscriptionResponse(s *Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		Tier:      s.Tier,
		Status:    s.Status,
		StartedAt: s.StartedAt,
		Simulated: true,
	}
}
