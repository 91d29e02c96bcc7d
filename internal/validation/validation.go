// Package validation collects field-level rule failures for insert and update payloads.
package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var ruleValidator = validator.New(validator.WithRequiredStructEnabled())

// FieldError names one offending payload field using its JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error reports every rule a payload failed. It is never returned with an empty field list.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Field+" "+field.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether the named field failed.
func (e *Error) Has(field string) bool {
	for _, candidate := range e.Fields {
		if candidate.Field == field {
			return true
		}
	}
	return false
}

// Rules accumulates failures for a single payload.
type Rules struct {
	failures []FieldError
}

// Check runs a validator tag expression against value and records message on failure.
func (r *Rules) Check(field string, value any, tag, message string) {
	if err := ruleValidator.Var(value, tag); err != nil {
		r.Fail(field, message)
	}
}

// Fail records a failure without running a rule.
func (r *Rules) Fail(field, message string) {
	r.failures = append(r.failures, FieldError{Field: field, Message: message})
}

// RequiredText fails when value is empty after trimming.
func (r *Rules) RequiredText(field, value string) {
	r.Check(field, strings.TrimSpace(value), "required", "is required")
}

// RequiredList fails when the slice is nil. Empty slices pass.
func (r *Rules) RequiredList(field string, value any) {
	r.Check(field, value, "required", "is required")
}

// Err returns nil when no rule failed.
func (r *Rules) Err() error {
	if len(r.failures) == 0 {
		return nil
	}
	fields := make([]FieldError, len(r.failures))
	copy(fields, r.failures)
	return &Error{Fields: fields}
}
