package catalog

import (
	"math"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest accepted product name, in characters.
const MaxNameLength = 100

// FieldError is a single rule violation on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when an input is rejected before being sent.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks a product input. Every rule is evaluated and all
// violations are returned together; an empty result means the input is valid.
func Validate(in ProductInput) []FieldError {
	var errs []FieldError

	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if in.Name != nil && utf8.RuneCountInString(*in.Name) > MaxNameLength {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 100 characters"})
	}
	if in.Price != nil && (*in.Price < 0 || math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0)) {
		errs = append(errs, FieldError{Field: "price", Message: "price must be zero or greater"})
	}
	if in.Stock != nil && *in.Stock < 0 {
		errs = append(errs, FieldError{Field: "stock", Message: "stock must be zero or greater"})
	}
	if in.Stock != nil && (*in.Stock != math.Trunc(*in.Stock) || math.IsInf(*in.Stock, 0)) {
		errs = append(errs, FieldError{Field: "stock", Message: "stock must be a whole number"})
	}

	return errs
}

// Check wraps the result of Validate in a *ValidationError, or returns nil.
func Check(in ProductInput) error {
	return asError(Validate(in))
}

func asError(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}
