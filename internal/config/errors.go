package config

import "fmt"

// ValidationError reports an invalid configuration value.
// Field is the YAML key or environment variable that carried it.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}
