package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom validation functions
	if err := validate.RegisterValidation("filekey", validateFileKey); err != nil {
		panic(fmt.Sprintf("failed to register filekey validation: %v", err))
	}
	if err := validate.RegisterValidation("targettype", validateTargetType); err != nil {
		panic(fmt.Sprintf("failed to register targettype validation: %v", err))
	}
	if err := validate.RegisterValidation("logaction", validateLogAction); err != nil {
		panic(fmt.Sprintf("failed to register logaction validation: %v", err))
	}
}

// Validate validates a struct using tags
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// ValidateFileKey validates a file key separately
func ValidateFileKey(key string) error {
	return validate.Var(key, "required,filekey")
}

// ValidateLogAction validates a log action separately
func ValidateLogAction(action string) error {
	return validate.Var(action, "required,logaction")
}

// Custom validation functions

func validateFileKey(fl validator.FieldLevel) bool {
	key := fl.Field().String()

	// File key requirements:
	// - "files/" prefix followed by a millisecond timestamp, a hyphen and the
	//   original file name
	// - No control characters
	rest, ok := strings.CutPrefix(key, "files/")
	if !ok {
		return false
	}

	digits, name, found := strings.Cut(rest, "-")
	if !found || digits == "" || name == "" {
		return false
	}
	for _, c := range digits {
		if !unicode.IsDigit(c) {
			return false
		}
	}
	for _, c := range name {
		if unicode.IsControl(c) {
			return false
		}
	}
	return true
}

func validateTargetType(fl validator.FieldLevel) bool {
	t := fl.Field().String()

	// Target type requirements:
	// - Length between 2 and 30 characters
	// - Uppercase letters and underscores only (CHAT, STUDY_PAGE, ...)
	if len(t) < 2 || len(t) > 30 {
		return false
	}
	for _, c := range t {
		if !unicode.IsUpper(c) && c != '_' {
			return false
		}
	}
	return true
}

func validateLogAction(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "DOWNLOAD", "DELETE":
		return true
	default:
		return false
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field string
	Error string
}

// FormatError formats a validation error into a human-readable message
func FormatError(err error) []ValidationError {
	var validationErrors []ValidationError

	if err == nil {
		return validationErrors
	}

	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			var message string

			switch e.Tag() {
			case "required":
				message = fmt.Sprintf("%s is required", e.Field())
			case "email":
				message = "Invalid email format"
			case "filekey":
				message = "File key must look like files/<timestamp>-<name>"
			case "targettype":
				message = "Target type must be 2-30 uppercase letters or underscores"
			case "logaction":
				message = "Action must be DOWNLOAD or DELETE"
			case "gt", "gte":
				message = fmt.Sprintf("%s must be positive", e.Field())
			default:
				message = fmt.Sprintf("Invalid value for %s", e.Field())
			}

			validationErrors = append(validationErrors, ValidationError{
				Field: strings.ToLower(e.Field()),
				Error: message,
			})
		}
	}

	return validationErrors
}
