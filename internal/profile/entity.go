// AngelaMos | 2026
// entity.go

package profile

import (
	"time"

	"github.com/carterperez-dev/prepvault/internal/access"
)

type Profile struct {
	ID           string      `db:"id"`
	Email        string      `db:"email"`
	PasswordHash string      `db:"password_hash"`
	Name         string      `db:"name"`
	IsAdmin      bool        `db:"is_admin"`
	TokenVersion int         `db:"token_version"`
	Tier         access.Tier `db:"tier"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

type Subscription struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	Tier      access.Tier `db:"tier"`
	Status    string      `db:"status"`
	StartedAt time.Time   `db:"started_at"`
	EndedAt   *time.Time  `db:"ended_at"`
}
