// AngelaMos | 2026
// kind.go

package content

import (
	"strings"
)

// Kind describes how one content type is stored and queried.
type Kind struct {
	// Name is the route segment and the metrics label.
	Name  string
	Table string
	// Columns lists every persisted column in insert order.
	Columns []string
	// Filters maps list query parameters to columns matched exactly.
	Filters map[string]string
	Slugged bool
}

// maxBindParams is PostgreSQL's per-statement bind parameter limit.
const maxBindParams = 65535

var immutableColumns = map[string]bool{
	"id":         true,
	"created_by": true,
	"created_at": true,
	"updated_at": true,
}

// MaxInsertRows is the largest batch a single multi-row insert of this kind
// can carry.
func (k Kind) MaxInsertRows() int {
	return maxBindParams / len(k.Columns)
}

func (k Kind) selectList() string {
	return strings.Join(k.Columns, ", ")
}

func (k Kind) insertQuery() string {
	named := make([]string, len(k.Columns))
	for i, c := range k.Columns {
		named[i] = ":" + c
	}
	return "INSERT INTO " + k.Table + " (" + k.selectList() + ") VALUES (" +
		strings.Join(named, ", ") + ")"
}

func (k Kind) updateQuery() string {
	sets := make([]string, 0, len(k.Columns))
	for _, c := range k.Columns {
		if immutableColumns[c] {
			continue
		}
		sets = append(sets, c+" = :"+c)
	}
	sets = append(sets, "updated_at = NOW()")
	return "UPDATE " + k.Table + " SET " + strings.Join(sets, ", ") + " WHERE id = :id"
}

// keyCondition matches the path key against the id, or the slug for kinds
// that have one.
func (k Kind) keyCondition() string {
	if k.Slugged {
		return "(id::text = $1 OR slug = $1)"
	}
	return "id::text = $1"
}

var (
	QuestionKind = Kind{
		Name:  "questions",
		Table: "questions",
		Columns: []string{
			"id", "title", "content", "answer", "type", "level", "tier",
			"subcategory_id", "created_by", "created_at", "updated_at",
		},
		Filters: map[string]string{
			"tier":           "tier",
			"type":           "type",
			"level":          "level",
			"subcategory_id": "subcategory_id",
		},
	}

	CodingQuestionKind = Kind{
		Name:  "coding-questions",
		Table: "coding_questions",
		Columns: []string{
			"id", "title", "slug", "description", "difficulty", "category", "tags",
			"tier", "solution", "video_link", "github_link", "category_id",
			"created_by", "created_at", "updated_at",
		},
		Filters: map[string]string{
			"tier":        "tier",
			"difficulty":  "difficulty",
			"category":    "category",
			"category_id": "category_id",
		},
		Slugged: true,
	}

	SystemDesignKind = Kind{
		Name:  "system-design",
		Table: "system_design_problems",
		Columns: []string{
			"id", "title", "slug", "description", "difficulty", "tags", "tier",
			"requirements", "solution", "diagram_url", "video_link", "category_id",
			"created_by", "created_at", "updated_at",
		},
		Filters: map[string]string{
			"tier":        "tier",
			"difficulty":  "difficulty",
			"category_id": "category_id",
		},
		Slugged: true,
	}

	ProjectKind = Kind{
		Name:  "projects",
		Table: "projects",
		Columns: []string{
			"id", "title", "slug", "description", "difficulty", "tech_stack", "tier",
			"github_link", "demo_link", "category_id", "created_by", "created_at",
			"updated_at",
		},
		Filters: map[string]string{
			"tier":        "tier",
			"difficulty":  "difficulty",
			"category_id": "category_id",
		},
		Slugged: true,
	}
)
