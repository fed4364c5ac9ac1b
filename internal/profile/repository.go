// AngelaMos | 2026
// repository.go

package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	UpdateName(ctx context.Context, id, name string) error
	SetAdmin(ctx context.Context, id string, admin bool) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	IsAdmin(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, params ListParams) ([]Profile, int, error)
	ActiveSubscription(ctx context.Context, userID string) (*Subscription, error)
	ReplaceSubscription(ctx context.Context, sub *Subscription) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// profileColumns reads the tier of the active subscription alongside the
// profile; users without one are on the lowest tier.
const profileColumns = `
		p.id, p.email, p.password_hash, p.name, p.is_admin, p.token_version,
		COALESCE(s.tier, 'Explorer') AS tier, p.created_at, p.updated_at`

const profileFrom = `
		FROM profiles p
		LEFT JOIN subscriptions s ON s.user_id = p.id AND s.status = 'active'`

func (r *repository) Create(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (id, email, password_hash, name, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at, token_version`

	row := r.db.QueryRowxContext(ctx, query,
		p.ID,
		p.Email,
		p.PasswordHash,
		p.Name,
		p.IsAdmin,
	)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt, &p.TokenVersion); err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create profile: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create profile: %w", err)
	}

	p.Tier = access.LowestTier()
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Profile, error) {
	return r.getOne(ctx, "get profile", "p.id = $1", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	return r.getOne(ctx, "get profile by email", "p.email = $1", email)
}

func (r *repository) getOne(
	ctx context.Context,
	op, where string,
	arg any,
) (*Profile, error) {
	query := "SELECT" + profileColumns + profileFrom + "\n\t\tWHERE " + where

	var p Profile
	err := r.db.GetContext(ctx, &p, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}

func (r *repository) UpdateName(ctx context.Context, id, name string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET name = $2, updated_at = NOW()
		WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return core.RequireAffected(result, "update profile")
}

func (r *repository) SetAdmin(ctx context.Context, id string, admin bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET is_admin = $2, updated_at = NOW()
		WHERE id = $1`, id, admin)
	if err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	return core.RequireAffected(result, "set admin")
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return core.RequireAffected(result, "update password")
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}
	return core.RequireAffected(result, "increment token version")
}

func (r *repository) IsAdmin(ctx context.Context, id string) (bool, error) {
	var admin bool
	err := r.db.GetContext(ctx, &admin,
		`SELECT is_admin FROM profiles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("read admin flag: %w", core.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("read admin flag: %w", err)
	}
	return admin, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Profile, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(p.email ILIKE $%d OR p.name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Tier != nil {
		conditions = append(conditions, fmt.Sprintf(
			"COALESCE(s.tier, 'Explorer') = $%d", argIdx))
		args = append(args, *params.Tier)
		argIdx++
	}

	if params.Admin != nil {
		conditions = append(conditions, fmt.Sprintf("p.is_admin = $%d", argIdx))
		args = append(args, *params.Admin)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*)" + profileFrom + "\n\t\tWHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}

	query := fmt.Sprintf(`SELECT%s%s
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`,
		profileColumns, profileFrom, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	var profiles []Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}

	return profiles, total, nil
}

func (r *repository) ActiveSubscription(
	ctx context.Context,
	userID string,
) (*Subscription, error) {
	query := `
		SELECT id, user_id, tier, status, started_at, ended_at
		FROM subscriptions
		WHERE user_id = $1 AND status = 'active'`

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get subscription: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	return &sub, nil
}

// ReplaceSubscription cancels the user's active subscription (if any) and
// activates sub in the same transaction.
func (r *repository) ReplaceSubscription(ctx context.Context, sub *Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	sub.Status = StatusActive

	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE subscriptions SET status = 'cancelled', ended_at = NOW()
			WHERE user_id = $1 AND status = 'active'`, sub.UserID); err != nil {
			return fmt.Errorf("cancel subscription: %w", err)
		}

		err := tx.GetContext(ctx, &sub.StartedAt, `
			INSERT INTO subscriptions (id, user_id, tier, status)
			VALUES ($1, $2, $3, $4)
			RETURNING started_at`,
			sub.ID, sub.UserID, sub.Tier, sub.Status)
		if err != nil {
			if core.IsForeignKeyError(err) {
				return fmt.Errorf("activate subscription: %w", core.ErrNotFound)
			}
			return fmt.Errorf("activate subscription: %w", err)
		}

		return nil
	})
}
