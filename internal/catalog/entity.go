// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"
)

type Category struct {
	ID          string    `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Slug        string    `db:"slug"        json:"slug"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

type Subcategory struct {
	ID          string    `db:"id"          json:"id"`
	CategoryID  *string   `db:"category_id" json:"category_id,omitempty"`
	Name        string    `db:"name"        json:"name"`
	Slug        string    `db:"slug"        json:"slug"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// Removal counts the rows a cascading delete took with it.
type Removal struct {
	Questions     int64 `json:"questions"`
	Subcategories int64 `json:"subcategories"`
}
