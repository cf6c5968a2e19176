package models

import (
	"fmt"
	"strings"
)

// ValidationError reports the required fields a request was missing or had
// malformed. Always caller-recoverable; handlers map it to a 400 with the
// field list intact.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// Validationf builds a ValidationError over the given field names.
func Validationf(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}
