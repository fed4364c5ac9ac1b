// AngelaMos | 2026
// entity.go

package auth

import (
	"time"

	"github.com/carterperez-dev/prepvault/internal/core"
)

// RefreshToken is one link in a rotation chain. Tokens of the same sign-in
// share a FamilyID so a replayed token can take the whole chain down.
type RefreshToken struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

func (t *RefreshToken) expiredAt(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// usable reports whether the token may still be exchanged. A used token is
// handled separately as reuse.
func (t *RefreshToken) usable(now time.Time) error {
	switch {
	case t.RevokedAt != nil:
		return core.ErrTokenRevoked
	case t.expiredAt(now):
		return core.ErrTokenExpired
	default:
		return nil
	}
}
