// AngelaMos | 2026
// service.go

package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/auth"
	"github.com/carterperez-dev/prepvault/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(p), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	p, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(p), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	p := &Profile{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Name:         name,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	return toUserInfo(p), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, userID string) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.repo.IsAdmin(ctx, userID)
}

func (s *Service) ActiveTier(ctx context.Context, userID string) (string, bool, error) {
	sub, err := s.repo.ActiveSubscription(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return sub.Tier.String(), true, nil
}

func (s *Service) GetProfile(ctx context.Context, id string) (*Profile, error) {
	if id == "" {
		return nil, fmt.Errorf("get profile: %w", core.ErrUnauthorized)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	id string,
	req UpdateProfileRequest,
) (*Profile, error) {
	if req.Name != nil {
		if err := s.repo.UpdateName(ctx, id, strings.TrimSpace(*req.Name)); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListProfiles(
	ctx context.Context,
	params ListParams,
) ([]Profile, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) SetAdmin(
	ctx context.Context,
	requesterID, targetID string,
	admin bool,
) (*Profile, error) {
	if requesterID == targetID && !admin {
		return nil, fmt.Errorf("revoke own admin flag: %w", core.ErrForbidden)
	}

	if err := s.repo.SetAdmin(ctx, targetID, admin); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, targetID)
}

// ChangeTier activates a new subscription at tier for userID. Payment is
// simulated: the change takes effect immediately.
func (s *Service) ChangeTier(
	ctx context.Context,
	userID string,
	tier access.Tier,
) (*Subscription, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("change tier: %w", access.ErrUnknownTier)
	}

	sub := &Subscription{UserID: userID, Tier: tier}
	if err := s.repo.ReplaceSubscription(ctx, sub); err != nil {
		return nil, err
	}

	return sub, nil
}

func toUserInfo(p *Profile) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           p.ID,
		Email:        p.Email,
		Name:         p.Name,
		PasswordHash: p.PasswordHash,
		Admin:        p.IsAdmin,
		Tier:         p.Tier,
		TokenVersion: p.TokenVersion,
	}
}

var (
	_ auth.UserProvider    = (*Service)(nil)
	_ access.AccountSource = (*Service)(nil)
)
