// AngelaMos | 2026
// dto.go

package catalog

type CategoryRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=200"`
	Slug        string `json:"slug"        validate:"omitempty,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

type SubcategoryRequest struct {
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
	Name        string  `json:"name"        validate:"required,min=1,max=200"`
	Slug        string  `json:"slug"        validate:"omitempty,max=200"`
	Description string  `json:"description" validate:"max=2000"`
}
