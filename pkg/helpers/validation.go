package helpers

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps go-playground validator with custom rules
type CustomValidator struct {
	validate *validator.Validate
}

// NewCustomValidator creates a new custom validator
func NewCustomValidator() *CustomValidator {
	v := validator.New()

	// Register custom validators
	v.RegisterValidation("slug", validateSlug)
	v.RegisterValidation("reaction_action", validateReactionAction)
	v.RegisterValidation("savable_type", validateSavableType)

	return &CustomValidator{validate: v}
}

// Validate validates a struct
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.Struct(i)
}

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// validateSlug validates URL slugs (lowercase alphanumerics and hyphens)
func validateSlug(fl validator.FieldLevel) bool {
	return slugRegex.MatchString(fl.Field().String())
}

// validateReactionAction validates reaction actions
func validateReactionAction(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return v == "like" || v == "dislike"
}

// validateSavableType validates polymorphic save targets
func validateSavableType(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	return v == "episode" || v == "topic"
}
