package model

import (
	"fmt"
	"strings"
)

// FieldViolation is a single rejected field with a human-readable reason.
type FieldViolation struct {
	Field   string
	Message string
}

// ValidationError collects every violated field of a payload so the caller
// sees all problems at once.
type ValidationError struct {
	violations []FieldViolation
}

func (e *ValidationError) Add(field, message string) {
	e.violations = append(e.violations, FieldViolation{Field: field, Message: message})
}

func (e *ValidationError) Has(field string) bool {
	for _, v := range e.violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) Empty() bool {
	return len(e.violations) == 0
}

// Messages returns one "field: reason" line per violation, in the order the
// violations were recorded.
func (e *ValidationError) Messages() []string {
	out := make([]string, 0, len(e.violations))
	for _, v := range e.violations {
		out = append(out, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return out
}

func (e *ValidationError) Violations() []FieldViolation {
	return e.violations
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}
