package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"inkpress/internal/types"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate

	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)
)

// Validator represents a validator instance
type Validator struct {
	validate *validator.Validate
}

// New creates a new validator instance
func New() *Validator {
	once.Do(func() {
		validate = validator.New()

		// Register custom validation functions
		_ = validate.RegisterValidation("slug", validateSlug)
		_ = validate.RegisterValidation("category", validateCategory)

		// Use JSON tag names in error messages
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})

	return &Validator{
		validate: validate,
	}
}

// Struct validates a struct
func (v *Validator) Struct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			return fmt.Errorf("invalid validation error: %w", err)
		}

		var errMsgs []string
		for _, err := range err.(validator.ValidationErrors) {
			errMsgs = append(errMsgs, formatError(err))
		}
		return fmt.Errorf("validation failed: %s", strings.Join(errMsgs, "; "))
	}
	return nil
}

// Var validates a single variable
func (v *Validator) Var(field any, tag string) error {
	return v.validate.Var(field, tag)
}

// formatError formats a validation error
func formatError(err validator.FieldError) string {
	field := err.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, err.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "slug":
		return fmt.Sprintf("%s must be a lowercase slug", field)
	case "category":
		return fmt.Sprintf("%s must be one of homepage, content, settings", field)
	default:
		return fmt.Sprintf("%s failed on tag %s", field, err.Tag())
	}
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

func validateCategory(fl validator.FieldLevel) bool {
	return types.Category(fl.Field().String()).Valid()
}
