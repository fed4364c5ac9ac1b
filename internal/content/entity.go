// AngelaMos | 2026
// entity.go

package content

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/core"
)

// Item is implemented by the pointer type of every content record.
type Item interface {
	// Key is the record id.
	Key() string
	SetKey(id string)
	RequiredTier() access.Tier
	// Redact strips the gated fields and marks the record locked.
	Redact()
	// Prepare fills server-owned fields before a write. createdBy is
	// applied only when non-empty.
	Prepare(createdBy string, now time.Time)
}

type Question struct {
	ID            string      `db:"id"             json:"id"`
	Title         string      `db:"title"          json:"title"                    validate:"required,max=500"`
	Content       string      `db:"content"        json:"content,omitempty"        validate:"required"`
	Answer        string      `db:"answer"         json:"answer,omitempty"         validate:"required"`
	Type          string      `db:"type"           json:"type"                     validate:"required,max=50"`
	Level         string      `db:"level"          json:"level"                    validate:"required,max=50"`
	Tier          access.Tier `db:"tier"           json:"tier"`
	SubcategoryID *string     `db:"subcategory_id" json:"subcategory_id,omitempty"`
	CreatedBy     *string     `db:"created_by"     json:"created_by,omitempty"`
	CreatedAt     time.Time   `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"     json:"updated_at"`
	Locked        bool        `db:"-"              json:"locked"`
}

func (q *Question) Key() string { return q.ID }
func (q *Question) RequiredTier() access.Tier { return q.Tier }
func (q *Question) SetKey(id string) { q.ID = id }

func (q *Question) Redact() {
	q.Content = ""
	q.Answer = ""
	q.Locked = true
}

func (q *Question) Prepare(createdBy string, now time.Time) {
	prepareCommon(&q.ID, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt, createdBy, now)
}

type CodingQuestion struct {
	ID          string         `db:"id"          json:"id"`
	Title       string         `db:"title"       json:"title"                 validate:"required,max=500"`
	Slug        string         `db:"slug"        json:"slug"`
	Description string         `db:"description" json:"description,omitempty"`
	Difficulty  string         `db:"difficulty"  json:"difficulty"`
	Category    string         `db:"category"    json:"category"`
	Tags        pq.StringArray `db:"tags"        json:"tags"`
	Tier        access.Tier    `db:"tier"        json:"tier"`
	Solution    string         `db:"solution"    json:"solution,omitempty"`
	VideoLink   string         `db:"video_link"  json:"video_link,omitempty"`
	GithubLink  string         `db:"github_link" json:"github_link,omitempty"`
	CategoryID  *string        `db:"category_id" json:"category_id,omitempty"`
	CreatedBy   *string        `db:"created_by"  json:"created_by,omitempty"`
	CreatedAt   time.Time      `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"  json:"updated_at"`
	Locked      bool           `db:"-"           json:"locked"`
}

func (c *CodingQuestion) Key() string { return c.ID }
func (c *CodingQuestion) RequiredTier() access.Tier { return c.Tier }
func (c *CodingQuestion) SetKey(id string) { c.ID = id }

func (c *CodingQuestion) Redact() {
	c.Description = ""
	c.Solution = ""
	c.VideoLink = ""
	c.GithubLink = ""
	c.Locked = true
}

func (c *CodingQuestion) Prepare(createdBy string, now time.Time) {
	prepareCommon(&c.ID, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt, createdBy, now)
	c.Slug = ensureSlug(c.Slug, c.Title, c.ID)
	if c.Tags == nil {
		c.Tags = pq.StringArray{}
	}
}

type SystemDesignProblem struct {
	ID           string         `db:"id"           json:"id"`
	Title        string         `db:"title"        json:"title"                  validate:"required,max=500"`
	Slug         string         `db:"slug"         json:"slug"`
	Description  string         `db:"description"  json:"description,omitempty"`
	Difficulty   string         `db:"difficulty"   json:"difficulty"`
	Tags         pq.StringArray `db:"tags"         json:"tags"`
	Tier         access.Tier    `db:"tier"         json:"tier"`
	Requirements string         `db:"requirements" json:"requirements,omitempty"`
	Solution     string         `db:"solution"     json:"solution,omitempty"`
	DiagramURL   string         `db:"diagram_url"  json:"diagram_url,omitempty"`
	VideoLink    string         `db:"video_link"   json:"video_link,omitempty"`
	CategoryID   *string        `db:"category_id"  json:"category_id,omitempty"`
	CreatedBy    *string        `db:"created_by"   json:"created_by,omitempty"`
	CreatedAt    time.Time      `db:"created_at"   json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"   json:"updated_at"`
	Locked       bool           `db:"-"            json:"locked"`
}

func (s *SystemDesignProblem) Key() string { return s.ID }
func (s *SystemDesignProblem) RequiredTier() access.Tier { return s.Tier }
func (s *SystemDesignProblem) SetKey(id string) { s.ID = id }

func (s *SystemDesignProblem) Redact() {
	s.Description = ""
	s.Requirements = ""
	s.Solution = ""
	s.DiagramURL = ""
	s.VideoLink = ""
	s.Locked = true
}

func (s *SystemDesignProblem) Prepare(createdBy string, now time.Time) {
	prepareCommon(&s.ID, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt, createdBy, now)
	s.Slug = ensureSlug(s.Slug, s.Title, s.ID)
	if s.Tags == nil {
		s.Tags = pq.StringArray{}
	}
}

type Project struct {
	ID          string         `db:"id"          json:"id"`
	Title       string         `db:"title"       json:"title"                 validate:"required,max=500"`
	Slug        string         `db:"slug"        json:"slug"`
	Description string         `db:"description" json:"description,omitempty"`
	Difficulty  string         `db:"difficulty"  json:"difficulty"`
	TechStack   pq.StringArray `db:"tech_stack"  json:"tech_stack"`
	Tier        access.Tier    `db:"tier"        json:"tier"`
	GithubLink  string         `db:"github_link" json:"github_link,omitempty"`
	DemoLink    string         `db:"demo_link"   json:"demo_link,omitempty"`
	CategoryID  *string        `db:"category_id" json:"category_id,omitempty"`
	CreatedBy   *string        `db:"created_by"  json:"created_by,omitempty"`
	CreatedAt   time.Time      `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"  json:"updated_at"`
	Locked      bool           `db:"-"           json:"locked"`
}

func (p *Project) Key() string { return p.ID }
func (p *Project) RequiredTier() access.Tier { return p.Tier }
func (p *Project) SetKey(id string) { p.ID = id }

func (p *Project) Redact() {
	p.Description = ""
	p.GithubLink = ""
	p.DemoLink = ""
	p.Locked = true
}

func (p *Project) Prepare(createdBy string, now time.Time) {
	prepareCommon(&p.ID, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt, createdBy, now)
	p.Slug = ensureSlug(p.Slug, p.Title, p.ID)
	if p.TechStack == nil {
		p.TechStack = pq.StringArray{}
	}
}

func prepareCommon(
	id *string,
	owner **string,
	createdAt, updatedAt *time.Time,
	createdBy string,
	now time.Time,
) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if createdBy != "" {
		*owner = &createdBy
	}
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// ensureSlug keeps an explicit slug and otherwise derives one from the
// title, suffixed with part of the id so derived slugs stay unique.
func ensureSlug(slug, title, id string) string {
	if s := strings.TrimSpace(slug); s != "" {
		return s
	}

	base := core.Slugify(title)
	suffix := id
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}
