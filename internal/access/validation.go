// AngelaMos | 2026
// validation.go

package access

import (
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator with the "tier" rule registered for
// string fields that must name a known tier.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	//nolint:errcheck // registration only fails on an empty tag
	_ = v.RegisterValidation("tier", func(fl validator.FieldLevel) bool {
		_, err := ParseTier(fl.Field().String())
		return err == nil
	})
	return v
}
