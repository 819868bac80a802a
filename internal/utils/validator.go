// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("bps", validateBps)
	validate.RegisterValidation("handle", validateHandle)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// validateBps accepts a basis-point value in [0, 10000].
func validateBps(fl validator.FieldLevel) bool {
	bps := fl.Field().Int()
	return bps >= 0 && bps <= 10000
}

func validateHandle(fl validator.FieldLevel) bool {
	handle := fl.Field().String()

	// Handles are alphanumeric with dots, dashes and underscores, 3-100 characters
	if len(handle) < 3 || len(handle) > 100 {
		return false
	}

	matched, _ := regexp.MatchString("^[a-zA-Z0-9._-]+$", handle)
	return matched
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "bps":
		return e.Field() + " must be between 0 and 10000 basis points"
	case "handle":
		return "Handle must be 3-100 characters of letters, numbers, dots, dashes or underscores"
	default:
		return e.Field() + " is invalid"
	}
}
