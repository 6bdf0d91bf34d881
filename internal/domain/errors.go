package domain

import (
	"fmt"
	"strings"
)

// FieldViolation describes a single invalid request field.
type FieldViolation struct {
	Field  string
	Reason string
}

func (v FieldViolation) String() string {
	return v.Field + ": " + v.Reason
}

// ValidationError reports every structural violation found in a request.
// All fields are checked before the error is returned; the list is never
// truncated to the first failure.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "invalid order request: " + strings.Join(parts, "; ")
}

// InvalidCurrencyError reports a currency code that is not a recognized
// ISO 4217 code.
type InvalidCurrencyError struct {
	Code string
}

func (e *InvalidCurrencyError) Error() string {
	return fmt.Sprintf("invalid currency: %s", e.Code)
}
